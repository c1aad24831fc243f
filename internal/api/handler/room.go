package handler

import (
	"net/http"

	"github.com/mcoot/hptracker/internal/api/response"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	controller *tracker.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(controller *tracker.Controller) *RoomHandler {
	return &RoomHandler{controller: controller}
}

// Create handles POST /api/v1/rooms. Rooms have no record of their own, so
// this only hands out a fresh code for a DM to share.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	code := h.controller.NewRoomCode()
	response.Created(w, "/api/v1/rooms/"+string(code)+"/roster", response.RoomCreated{RoomCode: string(code)})
}
