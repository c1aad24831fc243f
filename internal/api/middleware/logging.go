package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hptracker/internal/middleware"
)

// Logging logs API requests with the room and player named in the path
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, pathAttrs)
}

func pathAttrs(r *http.Request) []slog.Attr {
	vars := mux.Vars(r)
	var attrs []slog.Attr
	if code, ok := vars["code"]; ok {
		attrs = append(attrs, slog.String("room", code))
	}
	if name, ok := vars["name"]; ok {
		attrs = append(attrs, slog.String("player", name))
	}
	return attrs
}
