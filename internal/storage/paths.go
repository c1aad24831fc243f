package storage

import (
	"strings"

	"github.com/mcoot/hptracker/internal/model"
)

// PlayersDir is the directory holding every player record of a room
func PlayersDir(room model.RoomCode) string {
	return "rooms/" + string(room) + "/players"
}

// PlayerPath is where a single player's record lives
func PlayerPath(room model.RoomCode, name model.PlayerName) string {
	return PlayersDir(room) + "/" + string(name)
}

// Split separates a path into its parent directory and final segment
func Split(path string) (dir, name string) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// CleanDir strips leading and trailing slashes so directories compare equal
// to the dir half of Split
func CleanDir(dir string) string {
	return strings.Trim(dir, "/")
}
