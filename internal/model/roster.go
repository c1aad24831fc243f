package model

import "time"

// RosterEntry is a named character shown on the DM's roster
type RosterEntry struct {
	PlayerName    PlayerName `json:"player_name"`
	CharacterName string     `json:"character_name"`
	MaxHP         int        `json:"max_hp"`
	CurrentHP     int        `json:"current_hp"`
	Percent       int        `json:"percent"`
	Band          string     `json:"band"`
}

// Snapshot is the roster of a room at a point in time
type Snapshot struct {
	RoomCode RoomCode      `json:"room_code"`
	Entries  []RosterEntry `json:"entries"`
	// Players counts every record in the room, including players who have
	// not named their character yet.
	Players int       `json:"players"`
	At      time.Time `json:"at"`
}
