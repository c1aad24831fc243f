package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/hptracker/internal/api/apierr"
	"github.com/mcoot/hptracker/internal/middleware"
)

// Recovery answers handler panics with an INTERNAL_ERROR body that quotes
// the request id
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, requestID string) {
		apierr.WriteError(w, apierr.NewInternalErrorRef(requestID))
	})
}
