package middleware

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/hptracker/internal/middleware"
)

// Recovery answers handler panics with an HTML error page
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, errorPage)
}

func errorPage(w http.ResponseWriter, _ *http.Request, requestID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	ref := ""
	if requestID != "" {
		ref = `<p class="muted">Reference: ` + templ.EscapeString(requestID) + `</p>`
	}
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Error - HP Tracker</title></head>
<body>
<h1>Internal Server Error</h1>
<p>Something went wrong. Your character sheet is safe; please try again.</p>
` + ref + `
<p><a href="/">Back to your room</a></p>
</body>
</html>`))
}
