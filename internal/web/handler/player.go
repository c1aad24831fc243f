package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/middleware"
)

// PlayerHandler handles a player's edits to their own record
type PlayerHandler struct {
	controller *tracker.Controller
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(controller *tracker.Controller) *PlayerHandler {
	return &PlayerHandler{controller: controller}
}

// SaveCharacter handles the character sheet form
func (h *PlayerHandler) SaveCharacter(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	maxHP, err := formInt(r, "max_hp")
	if err != nil {
		middleware.SetFlash(w, "error", "Max HP must be a number")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	currentHP, err := formInt(r, "current_hp")
	if err != nil {
		middleware.SetFlash(w, "error", "Current HP must be a number")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	in := tracker.CharacterInput{
		CharacterName: strings.TrimSpace(r.FormValue("name")),
		MaxHP:         maxHP,
		CurrentHP:     currentHP,
	}
	if _, err := h.controller.SaveCharacter(r.Context(), id, in); err != nil {
		failAndRedirect(w, r, err)
		return
	}

	middleware.SetFlash(w, "success", "Character saved")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Adjust handles the player's own heal and damage buttons
func (h *PlayerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())

	delta, err := formInt(r, "delta")
	if err != nil {
		middleware.SetFlash(w, "error", "Invalid adjustment")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.controller.AdjustSelf(r.Context(), id, delta); err != nil {
		failAndRedirect(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
