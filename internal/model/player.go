package model

import (
	"strings"
)

// PlayerName is the username a player logs in with. It is unique within a room.
type PlayerName string

// RoomCode identifies a shared session
type RoomCode string

// ParsePlayerName trims the input and checks it can be used as a path segment
func ParsePlayerName(s string) (PlayerName, error) {
	name, err := parseSegment(s)
	if err != nil {
		return "", err
	}
	return PlayerName(name), nil
}

// ParseRoomCode trims the input and checks it can be used as a path segment.
// An empty code yields ErrRoomCodeRequired.
func ParseRoomCode(s string) (RoomCode, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrRoomCodeRequired
	}
	code, err := parseSegment(s)
	if err != nil {
		return "", err
	}
	return RoomCode(code), nil
}

func parseSegment(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "/") || s == "." || s == ".." {
		return "", ErrInvalidName
	}
	return s, nil
}

// PlayerRecord is the per-player state stored for a room.
// PlayerName is not part of the stored value; it is attached from the path.
type PlayerRecord struct {
	PlayerName    PlayerName `json:"-"`
	CharacterName string     `json:"name"`
	MaxHP         int        `json:"maxHP"`
	CurrentHP     int        `json:"currentHP"`
}

// DefaultPlayerRecord is the record written the first time a player enters a room
func DefaultPlayerRecord(name PlayerName) PlayerRecord {
	return PlayerRecord{PlayerName: name}
}

// HasCharacter reports whether the player has named their character yet
func (p PlayerRecord) HasCharacter() bool {
	return p.CharacterName != ""
}
