package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/hptracker/internal/services/roster"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/middleware"
	"github.com/mcoot/hptracker/internal/web/templates/pages"
)

// HomeHandler renders whichever screen the user is on
type HomeHandler struct {
	controller *tracker.Controller
	observer   *roster.Observer
	logger     *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(controller *tracker.Controller, observer *roster.Observer, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		controller: controller,
		observer:   observer,
		logger:     logger,
	}
}

// Home renders the login, DM or player screen
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	screen, err := h.controller.Open(r.Context(), middleware.NewCookieStore(w, r))
	if err != nil {
		h.logger.Error("failed to open screen", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch screen.View {
	case tracker.ViewDM:
		render(w, r, "DM", pages.DM(screen, joinURL(r, screen.Identity.RoomCode)))
	case tracker.ViewPlayer:
		snap := h.observer.Current(r.Context(), screen.Identity.RoomCode)
		screen.Roster = &snap
		render(w, r, "Player", pages.Player(screen))
	default:
		render(w, r, "Enter a room", pages.Login(r.URL.Query().Get("room")))
	}
}
