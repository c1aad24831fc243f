package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcoot/hptracker/internal/api/request"
	"github.com/mcoot/hptracker/internal/api/response"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/health"
	"github.com/mcoot/hptracker/internal/services/players"
)

// PlayerHandler handles player record endpoints
type PlayerHandler struct {
	players *players.Repository
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *players.Repository) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// List handles GET /api/v1/rooms/{code}/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	room, err := roomFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	records, err := h.players.ListPlayers(r.Context(), room)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerListFromModel(room, records))
}

// Get handles GET /api/v1/rooms/{code}/players/{name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, name, err := playerFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.players.GetPlayer(r.Context(), room, name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(*record))
}

// Ensure handles POST /api/v1/rooms/{code}/players/{name}
func (h *PlayerHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	room, name, err := playerFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.players.EnsurePlayer(r.Context(), room, name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(*record))
}

// Save handles PUT /api/v1/rooms/{code}/players/{name}
func (h *PlayerHandler) Save(w http.ResponseWriter, r *http.Request) {
	room, name, err := playerFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.SavePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.MaxHP == nil {
		WriteError(w, NewInvalidRequestError("max_hp is required"))
		return
	}
	if req.CurrentHP == nil {
		WriteError(w, NewInvalidRequestError("current_hp is required"))
		return
	}

	maxHP := max(*req.MaxHP, 0)
	record := model.PlayerRecord{
		PlayerName:    name,
		CharacterName: strings.TrimSpace(req.Name),
		MaxHP:         maxHP,
		CurrentHP:     health.Clamp(*req.CurrentHP, maxHP),
	}
	if err := h.players.SavePlayer(r.Context(), room, name, record); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(record))
}

// Adjust handles POST /api/v1/rooms/{code}/players/{name}/adjust
func (h *PlayerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	room, name, err := playerFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Delta == nil {
		WriteError(w, NewInvalidRequestError("delta is required"))
		return
	}

	record, err := h.players.AdjustHealth(r.Context(), room, name, *req.Delta)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(*record))
}
