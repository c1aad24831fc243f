// Package session persists who the current user is between visits.
package session

import (
	"strconv"

	"github.com/mcoot/hptracker/internal/model"
)

// Persisted keys
const (
	KeyRoomCode = "room-code"
	KeyUsername = "username"
	KeyIsDM     = "is-dm"
)

// Keys lists every persisted key
var Keys = []string{KeyRoomCode, KeyUsername, KeyIsDM}

// KeyStore is a small string key-value store owned by one user agent,
// such as browser cookies or a file in the user's home directory
type KeyStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Load restores the identity. It reports false when any key is missing or
// unusable; a partial identity is never returned.
func Load(store KeyStore) (model.Identity, bool) {
	rawRoom, ok := store.Get(KeyRoomCode)
	if !ok {
		return model.Identity{}, false
	}
	rawUser, ok := store.Get(KeyUsername)
	if !ok {
		return model.Identity{}, false
	}
	rawDM, ok := store.Get(KeyIsDM)
	if !ok {
		return model.Identity{}, false
	}

	room, err := model.ParseRoomCode(rawRoom)
	if err != nil {
		return model.Identity{}, false
	}
	user, err := model.ParsePlayerName(rawUser)
	if err != nil {
		return model.Identity{}, false
	}
	isDM, err := strconv.ParseBool(rawDM)
	if err != nil {
		return model.Identity{}, false
	}

	role := model.RolePlayer
	if isDM {
		role = model.RoleDM
	}
	return model.Identity{RoomCode: room, Username: user, Role: role}, true
}

// Save writes all three keys
func Save(store KeyStore, id model.Identity) error {
	if err := store.Set(KeyRoomCode, string(id.RoomCode)); err != nil {
		return err
	}
	if err := store.Set(KeyUsername, string(id.Username)); err != nil {
		return err
	}
	return store.Set(KeyIsDM, strconv.FormatBool(id.IsDM()))
}

// Clear removes all three keys
func Clear(store KeyStore) error {
	for _, key := range Keys {
		if err := store.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// MemoryStore is a KeyStore backed by a map
type MemoryStore map[string]string

func (m MemoryStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryStore) Set(key, value string) error {
	m[key] = value
	return nil
}

func (m MemoryStore) Delete(key string) error {
	delete(m, key)
	return nil
}
