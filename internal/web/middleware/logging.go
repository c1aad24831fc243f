package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/hptracker/internal/middleware"
	"github.com/mcoot/hptracker/internal/session"
)

// Logging logs web requests along with the room and user from the identity
// cookies, when present
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, identityAttrs)
}

func identityAttrs(r *http.Request) []slog.Attr {
	id, ok := session.Load(NewCookieStore(nil, r))
	if !ok {
		return nil
	}
	return []slog.Attr{
		slog.String("room", string(id.RoomCode)),
		slog.String("user", string(id.Username)),
		slog.String("role", string(id.Role)),
	}
}
