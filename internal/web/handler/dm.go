package handler

import (
	"net/http"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/middleware"
)

// DMHandler handles the Dungeon Master's roster controls
type DMHandler struct {
	controller *tracker.Controller
}

// NewDMHandler creates a new DMHandler
func NewDMHandler(controller *tracker.Controller) *DMHandler {
	return &DMHandler{controller: controller}
}

// Adjust heals or damages one player
func (h *DMHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())

	delta, err := formInt(r, "delta")
	if err != nil {
		middleware.SetFlash(w, "error", "Invalid adjustment")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	target, err := model.ParsePlayerName(r.FormValue("player"))
	if err != nil {
		failAndRedirect(w, r, err)
		return
	}

	if _, err := h.controller.AdjustPlayer(r.Context(), id, target, delta); err != nil {
		failAndRedirect(w, r, err)
		return
	}

	// htmx requests only need the roster to refresh, which the event stream does
	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
