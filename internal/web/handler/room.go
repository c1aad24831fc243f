package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/skip2/go-qrcode"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/web/middleware"
	"github.com/mcoot/hptracker/internal/web/sse"
)

const qrSize = 320

// RoomHandler serves the room's live roster stream and share code
type RoomHandler struct {
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(hubManager *sse.HubManager, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		hubManager: hubManager,
		logger:     logger,
	}
}

// Events streams roster updates for the user's room. Leaving the page or
// changing room closes the stream, which stops observing the room once
// nobody else is watching.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	sse.ServeSSE(w, r, h.hubManager, id.RoomCode, string(id.Username))
}

// QRCode renders a PNG QR code of the room's join link
func (h *RoomHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())

	png, err := qrcode.Encode(joinURL(r, id.RoomCode), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("failed to encode qr code",
			slog.String("room", string(id.RoomCode)),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}

// joinURL is the link players follow to land on the login form with the
// room code filled in
func joinURL(r *http.Request, room model.RoomCode) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     "/",
		RawQuery: url.Values{"room": {string(room)}}.Encode(),
	}
	return u.String()
}
