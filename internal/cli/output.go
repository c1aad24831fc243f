package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/health"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Status:
		o.printStatus(v)
	case Player:
		o.printPlayer(v)
	case model.Snapshot:
		o.printRoster(v)
	case RoomResult:
		_, _ = fmt.Fprintf(o.w, "Room code: %s\n", v.RoomCode)
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	PlayerName    string `json:"player"`
	CharacterName string `json:"name"`
	MaxHP         int    `json:"max_hp"`
	CurrentHP     int    `json:"current_hp"`
}

func playerFromModel(r model.PlayerRecord) Player {
	return Player{
		PlayerName:    string(r.PlayerName),
		CharacterName: r.CharacterName,
		MaxHP:         r.MaxHP,
		CurrentHP:     r.CurrentHP,
	}
}

func (p Player) toModel() model.PlayerRecord {
	return model.PlayerRecord{
		PlayerName:    model.PlayerName(p.PlayerName),
		CharacterName: p.CharacterName,
		MaxHP:         p.MaxHP,
		CurrentHP:     p.CurrentHP,
	}
}

// Status is the user's current screen
type Status struct {
	View     string          `json:"view"`
	RoomCode string          `json:"room_code,omitempty"`
	Username string          `json:"username,omitempty"`
	Role     string          `json:"role,omitempty"`
	Player   *Player         `json:"player,omitempty"`
	Roster   *model.Snapshot `json:"roster,omitempty"`
}

func statusFromScreen(s *tracker.Screen) Status {
	st := Status{View: string(s.View)}
	if s.View == tracker.ViewLogin {
		return st
	}
	st.RoomCode = string(s.Identity.RoomCode)
	st.Username = string(s.Identity.Username)
	st.Role = string(s.Identity.Role)
	if s.Record != nil {
		p := playerFromModel(*s.Record)
		st.Player = &p
	}
	st.Roster = s.Roster
	return st
}

// RoomResult response type
type RoomResult struct {
	RoomCode string `json:"room_code"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printStatus(s Status) {
	if s.View == string(tracker.ViewLogin) {
		_, _ = fmt.Fprintln(o.w, "Not in a room. Use 'hptracker login' to enter one.")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", s.RoomCode)
	_, _ = fmt.Fprintf(o.w, "User: %s (%s)\n", s.Username, s.Role)
	if s.Player != nil {
		o.printPlayer(*s.Player)
	}
	if s.Roster != nil {
		o.printRoster(*s.Roster)
	}
}

func (o *Output) printPlayer(p Player) {
	name := p.CharacterName
	if name == "" {
		name = "(unnamed)"
	}
	_, _ = fmt.Fprintf(o.w, "Character: %s\n", name)
	_, _ = fmt.Fprintf(o.w, "HP: %d / %d %s\n", p.CurrentHP, p.MaxHP, hpBar(p.CurrentHP, p.MaxHP))
}

func (o *Output) printRoster(s model.Snapshot) {
	_, _ = fmt.Fprintf(o.w, "Roster for %s:\n", s.RoomCode)
	if len(s.Entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "  No characters yet.")
	}
	for _, e := range s.Entries {
		_, _ = fmt.Fprintf(o.w, "  %-16s %-20s %4d / %-4d %s\n",
			e.PlayerName, e.CharacterName, e.CurrentHP, e.MaxHP, hpBar(e.CurrentHP, e.MaxHP))
	}
	if waiting := s.Players - len(s.Entries); waiting > 0 {
		_, _ = fmt.Fprintf(o.w, "  (%d without a character)\n", waiting)
	}
}

const barWidth = 20

// hpBar draws a fixed-width text bar labelled with its band
func hpBar(current, max int) string {
	filled := health.Percent(current, max) * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "] " +
		string(health.BarBand(current, max))
}
