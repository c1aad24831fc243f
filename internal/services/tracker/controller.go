// Package tracker is the view controller shared by the web UI and the CLI.
// A user is on exactly one of three screens: login, dm or player. Login
// leads to dm or player and only logout leads back.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/hptracker/internal/dependencies/random"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/health"
	"github.com/mcoot/hptracker/internal/session"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	ErrAlreadyInRoom = errors.New("already in a room; log out first")
	ErrNotInRoom     = errors.New("not in a room")
	ErrNotDM         = errors.New("only the DM can do that")
	ErrNotPlayer     = errors.New("only players can do that")
)

// View is the screen the user is on
type View string

const (
	ViewLogin  View = "login"
	ViewDM     View = "dm"
	ViewPlayer View = "player"
)

// Players is the record access the controller needs. The server passes
// the store-backed repository; the CLI passes its API client.
type Players interface {
	EnsurePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error)
	GetPlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error)
	SavePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName, record model.PlayerRecord) error
	AdjustHealth(ctx context.Context, room model.RoomCode, name model.PlayerName, delta int) (*model.PlayerRecord, error)
}

// RosterReader returns the current roster of a room
type RosterReader interface {
	Current(ctx context.Context, room model.RoomCode) model.Snapshot
}

// Screen is everything needed to render the user's current view
type Screen struct {
	View     View
	Identity model.Identity
	// Restored is set when the identity came from a previous visit
	Restored bool
	// Record is the player's own record on the player screen
	Record *model.PlayerRecord
	// Roster is the room roster on the DM screen
	Roster *model.Snapshot
}

// LoginInput is what the login form collects
type LoginInput struct {
	RoomCode string
	Username string
	AsDM     bool
}

// CharacterInput is what the player edit form collects
type CharacterInput struct {
	CharacterName string
	MaxHP         int
	CurrentHP     int
}

// Controller drives the login/dm/player state machine
type Controller struct {
	players Players
	roster  RosterReader
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new Controller
func NewController(players Players, roster RosterReader, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		players: players,
		roster:  roster,
		random:  random,
		logger:  logger.With(slog.String("component", "tracker")),
	}
}

// Identity returns the persisted identity, or ErrNotInRoom
func (c *Controller) Identity(keys session.KeyStore) (model.Identity, error) {
	id, ok := session.Load(keys)
	if !ok {
		return model.Identity{}, ErrNotInRoom
	}
	return id, nil
}

// Open restores the user's screen from the persisted identity
func (c *Controller) Open(ctx context.Context, keys session.KeyStore) (*Screen, error) {
	id, ok := session.Load(keys)
	if !ok {
		return &Screen{View: ViewLogin}, nil
	}

	if id.IsDM() {
		return c.dmScreen(ctx, id, true), nil
	}

	// A restored player reads their record once to fill the edit form
	record, err := c.players.GetPlayer(ctx, id.RoomCode, id.Username)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Warn("failed to load player record",
				slog.String("room", string(id.RoomCode)),
				slog.String("player", string(id.Username)),
				slog.String("error", err.Error()),
			)
		}
		def := model.DefaultPlayerRecord(id.Username)
		record = &def
	}
	return &Screen{View: ViewPlayer, Identity: id, Restored: true, Record: record}, nil
}

// Login moves from the login screen into a room. A DM without a room code
// gets a freshly generated one.
func (c *Controller) Login(ctx context.Context, keys session.KeyStore, in LoginInput) (*Screen, error) {
	if _, ok := session.Load(keys); ok {
		return nil, ErrAlreadyInRoom
	}

	username, err := model.ParsePlayerName(in.Username)
	if err != nil {
		return nil, err
	}

	var room model.RoomCode
	if in.AsDM && strings.TrimSpace(in.RoomCode) == "" {
		room = c.NewRoomCode()
	} else {
		room, err = model.ParseRoomCode(in.RoomCode)
		if err != nil {
			return nil, err
		}
	}

	id := model.Identity{RoomCode: room, Username: username, Role: model.RolePlayer}
	if in.AsDM {
		id.Role = model.RoleDM
	}

	var record *model.PlayerRecord
	if !id.IsDM() {
		record, err = c.players.EnsurePlayer(ctx, room, username)
		if err != nil {
			return nil, err
		}
	}

	if err := session.Save(keys, id); err != nil {
		return nil, err
	}

	c.logger.Info("entered room",
		slog.String("room", string(room)),
		slog.String("user", string(username)),
		slog.String("role", string(id.Role)),
	)

	if id.IsDM() {
		return c.dmScreen(ctx, id, false), nil
	}
	return &Screen{View: ViewPlayer, Identity: id, Record: record}, nil
}

// Logout forgets the identity, returning the user to the login screen
func (c *Controller) Logout(keys session.KeyStore) error {
	if id, ok := session.Load(keys); ok {
		c.logger.Info("left room",
			slog.String("room", string(id.RoomCode)),
			slog.String("user", string(id.Username)),
		)
	}
	return session.Clear(keys)
}

// NewRoomCode generates a room code for a DM starting a session
func (c *Controller) NewRoomCode() model.RoomCode {
	return model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
}

// SaveCharacter overwrites the player's own record. Max HP below zero
// becomes zero and current HP is clamped into [0, max].
func (c *Controller) SaveCharacter(ctx context.Context, id model.Identity, in CharacterInput) (*model.PlayerRecord, error) {
	if id.IsDM() {
		return nil, ErrNotPlayer
	}

	maxHP := max(in.MaxHP, 0)
	record := model.PlayerRecord{
		PlayerName:    id.Username,
		CharacterName: in.CharacterName,
		MaxHP:         maxHP,
		CurrentHP:     health.Clamp(in.CurrentHP, maxHP),
	}
	if err := c.players.SavePlayer(ctx, id.RoomCode, id.Username, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// AdjustSelf changes the player's own current HP
func (c *Controller) AdjustSelf(ctx context.Context, id model.Identity, delta int) (*model.PlayerRecord, error) {
	if id.IsDM() {
		return nil, ErrNotPlayer
	}
	return c.players.AdjustHealth(ctx, id.RoomCode, id.Username, delta)
}

// AdjustPlayer lets the DM heal or damage anyone in the room
func (c *Controller) AdjustPlayer(ctx context.Context, id model.Identity, target model.PlayerName, delta int) (*model.PlayerRecord, error) {
	if !id.IsDM() {
		return nil, ErrNotDM
	}
	record, err := c.players.AdjustHealth(ctx, id.RoomCode, target, delta)
	if err != nil {
		return nil, err
	}

	c.logger.Info("dm adjusted health",
		slog.String("room", string(id.RoomCode)),
		slog.String("player", string(target)),
		slog.Int("delta", delta),
		slog.Int("current_hp", record.CurrentHP),
	)
	return record, nil
}

func (c *Controller) dmScreen(ctx context.Context, id model.Identity, restored bool) *Screen {
	snap := c.roster.Current(ctx, id.RoomCode)
	return &Screen{View: ViewDM, Identity: id, Restored: restored, Roster: &snap}
}
