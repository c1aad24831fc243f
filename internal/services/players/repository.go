package players

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/health"
	"github.com/mcoot/hptracker/internal/storage"
)

// Repository reads and writes player records through a key-value store
type Repository struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a new Repository
func New(store storage.Store, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger.With(slog.String("component", "players")),
	}
}

// storedRecord is the wire shape. Pointers let Decode tell a missing field
// from a zero one.
type storedRecord struct {
	Name      *string `json:"name"`
	MaxHP     *int    `json:"maxHP"`
	CurrentHP *int    `json:"currentHP"`
}

// Encode serialises a record for storage
func Encode(record model.PlayerRecord) ([]byte, error) {
	return json.Marshal(record)
}

// Decode parses a stored record and attaches the player name.
// Values that are not JSON or lack any field yield ErrMalformedRecord.
func Decode(name model.PlayerName, raw []byte) (model.PlayerRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: %v", model.ErrMalformedRecord, err)
	}
	if stored.Name == nil || stored.MaxHP == nil || stored.CurrentHP == nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: missing field", model.ErrMalformedRecord)
	}
	return model.PlayerRecord{
		PlayerName:    name,
		CharacterName: *stored.Name,
		MaxHP:         *stored.MaxHP,
		CurrentHP:     *stored.CurrentHP,
	}, nil
}

// DecodeAll decodes a room directory listing, skipping malformed entries.
// The result is ordered by player name.
func DecodeAll(children map[string][]byte, logger *slog.Logger) []model.PlayerRecord {
	records := make([]model.PlayerRecord, 0, len(children))
	for name, raw := range children {
		record, err := Decode(model.PlayerName(name), raw)
		if err != nil {
			logger.Warn("skipping malformed player record",
				slog.String("player", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PlayerName < records[j].PlayerName
	})
	return records
}

// EnsurePlayer returns the player's record, creating the default record if
// none exists. Existing records are never modified.
func (r *Repository) EnsurePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error) {
	record, err := r.GetPlayer(ctx, room, name)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	created := model.DefaultPlayerRecord(name)
	if err := r.SavePlayer(ctx, room, name, created); err != nil {
		return nil, err
	}

	r.logger.Info("player joined room",
		slog.String("room", string(room)),
		slog.String("player", string(name)),
	)
	return &created, nil
}

// SavePlayer overwrites the player's full record
func (r *Repository) SavePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName, record model.PlayerRecord) error {
	data, err := Encode(record)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, storage.PlayerPath(room, name), data); err != nil {
		return fmt.Errorf("save player %s: %w", name, err)
	}
	return nil
}

// GetPlayer returns the player's record, or ErrPlayerNotFound when it is
// absent or unreadable
func (r *Repository) GetPlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error) {
	raw, err := r.store.Get(ctx, storage.PlayerPath(room, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %s: %w", name, err)
	}

	record, err := Decode(name, raw)
	if err != nil {
		r.logger.Warn("treating malformed player record as absent",
			slog.String("room", string(room)),
			slog.String("player", string(name)),
			slog.String("error", err.Error()),
		)
		return nil, model.ErrPlayerNotFound
	}
	return &record, nil
}

// ListPlayers returns every readable record in the room, named or not
func (r *Repository) ListPlayers(ctx context.Context, room model.RoomCode) ([]model.PlayerRecord, error) {
	children, err := r.store.List(ctx, storage.PlayersDir(room))
	if err != nil {
		return nil, fmt.Errorf("list players in %s: %w", room, err)
	}
	return DecodeAll(children, r.logger), nil
}

// AdjustHealth applies delta to the player's current HP, clamped to
// [0, maxHP]. Concurrent adjustments are not merged; the last write wins.
func (r *Repository) AdjustHealth(ctx context.Context, room model.RoomCode, name model.PlayerName, delta int) (*model.PlayerRecord, error) {
	record, err := r.GetPlayer(ctx, room, name)
	if err != nil {
		return nil, err
	}

	record.CurrentHP = health.Adjust(record.CurrentHP, record.MaxHP, delta)
	if err := r.SavePlayer(ctx, room, name, *record); err != nil {
		return nil, err
	}

	r.logger.Debug("health adjusted",
		slog.String("room", string(room)),
		slog.String("player", string(name)),
		slog.Int("delta", delta),
		slog.Int("current_hp", record.CurrentHP),
	)
	return record, nil
}
