// Package roster turns a room's player records into the DM's live roster.
package roster

import (
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/health"
)

// Project keeps the records whose character has been named.
// Input order is preserved.
func Project(records []model.PlayerRecord) []model.RosterEntry {
	entries := make([]model.RosterEntry, 0, len(records))
	for _, r := range records {
		if !r.HasCharacter() {
			continue
		}
		entries = append(entries, Entry(r))
	}
	return entries
}

// Entry builds the roster line for a single record
func Entry(r model.PlayerRecord) model.RosterEntry {
	return model.RosterEntry{
		PlayerName:    r.PlayerName,
		CharacterName: r.CharacterName,
		MaxHP:         r.MaxHP,
		CurrentHP:     r.CurrentHP,
		Percent:       health.Percent(r.CurrentHP, r.MaxHP),
		Band:          string(health.BarBand(r.CurrentHP, r.MaxHP)),
	}
}
