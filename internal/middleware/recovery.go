package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the error response after a panic. requestID is the
// id Logging assigned, or empty when Logging is not installed.
type PanicHandler func(w http.ResponseWriter, r *http.Request, requestID string)

// Recovery turns handler panics into a logged error and a response from
// handler. It may sit outside Logging; the id is then read back from the
// response header.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				id := RequestID(r.Context())
				if id == "" {
					id = w.Header().Get(RequestIDHeader)
				}
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("request_id", id),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				handler(w, r, id)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
