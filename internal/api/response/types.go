package response

import (
	"github.com/mcoot/hptracker/internal/model"
)

// Player represents a player record in API responses
type Player struct {
	PlayerName    string `json:"player"`
	CharacterName string `json:"name"`
	MaxHP         int    `json:"max_hp"`
	CurrentHP     int    `json:"current_hp"`
}

// PlayerFromModel converts a model.PlayerRecord to a response Player
func PlayerFromModel(p model.PlayerRecord) Player {
	return Player{
		PlayerName:    string(p.PlayerName),
		CharacterName: p.CharacterName,
		MaxHP:         p.MaxHP,
		CurrentHP:     p.CurrentHP,
	}
}

// PlayerList is the response for listing a room's players
type PlayerList struct {
	RoomCode string   `json:"room_code"`
	Players  []Player `json:"players"`
}

// PlayerListFromModel converts every record of a room
func PlayerListFromModel(room model.RoomCode, records []model.PlayerRecord) PlayerList {
	players := make([]Player, 0, len(records))
	for _, r := range records {
		players = append(players, PlayerFromModel(r))
	}
	return PlayerList{RoomCode: string(room), Players: players}
}

// RoomCreated is the response for creating a room
type RoomCreated struct {
	RoomCode string `json:"room_code"`
}

// Roster is a room's roster snapshot
type Roster = model.Snapshot

// RosterFromSnapshot makes sure entries encode as a list, never null
func RosterFromSnapshot(s model.Snapshot) Roster {
	if s.Entries == nil {
		s.Entries = []model.RosterEntry{}
	}
	return s
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
