package handler

import (
	"net/http"

	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/middleware"
)

// SessionHandler moves users in and out of rooms
type SessionHandler struct {
	controller *tracker.Controller
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(controller *tracker.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

// Login handles the room entry form
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	in := tracker.LoginInput{
		RoomCode: r.FormValue("room_code"),
		Username: r.FormValue("username"),
		AsDM:     r.FormValue("is_dm") == "true",
	}

	screen, err := h.controller.Login(r.Context(), middleware.NewCookieStore(w, r), in)
	if err != nil {
		failAndRedirect(w, r, err)
		return
	}

	middleware.SetFlash(w, "success", "Welcome to room "+string(screen.Identity.RoomCode))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout forgets the identity ("Change room")
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Logout(middleware.NewCookieStore(w, r)); err != nil {
		failAndRedirect(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
