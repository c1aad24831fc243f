package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/middleware"
	"github.com/mcoot/hptracker/internal/web/templates/layout"
)

// userMessage turns a service error into text fit for a flash message
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomCodeRequired):
		return "Room code is required"
	case errors.Is(err, model.ErrInvalidName):
		return "Names must not be empty or contain '/'"
	case errors.Is(err, model.ErrPlayerNotFound):
		return "That player is not in the room"
	case errors.Is(err, tracker.ErrAlreadyInRoom):
		return "You are already in a room. Change room first."
	case errors.Is(err, tracker.ErrNotDM):
		return "Only the DM can do that"
	case errors.Is(err, tracker.ErrNotPlayer):
		return "Only players can do that"
	default:
		return "Something went wrong, please try again"
	}
}

// failAndRedirect sets an error flash and sends the user back to their screen
func failAndRedirect(w http.ResponseWriter, r *http.Request, err error) {
	middleware.SetFlash(w, "error", userMessage(err))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formInt parses an integer form field, treating blank as 0
func formInt(r *http.Request, field string) (int, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// render writes a full page
func render(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := layout.Base(title, middleware.GetFlash(r.Context()), content)
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
