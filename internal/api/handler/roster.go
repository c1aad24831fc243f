package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/hptracker/internal/api/response"
	"github.com/mcoot/hptracker/internal/services/roster"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients never send data, only control frames
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The roster is public to anyone holding the room code
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RosterHandler serves room rosters
type RosterHandler struct {
	observer *roster.Observer
	logger   *slog.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(observer *roster.Observer, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		observer: observer,
		logger:   logger.With(slog.String("component", "roster-ws")),
	}
}

// Get handles GET /api/v1/rooms/{code}/roster
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := roomFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	snap := h.observer.Current(r.Context(), room)
	response.JSON(w, http.StatusOK, response.RosterFromSnapshot(snap))
}

// Stream handles GET /api/v1/rooms/{code}/roster/ws. Each message is one
// JSON roster snapshot; the first reflects the state at connect time.
func (h *RosterHandler) Stream(w http.ResponseWriter, r *http.Request) {
	room, err := roomFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	logger := h.logger.With(
		slog.String("room", string(room)),
		slog.String("conn_id", uuid.NewString()),
	)
	logger.Info("roster stream opened")
	defer logger.Info("roster stream closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ob := h.observer.Observe(ctx, room)
	defer ob.Stop()

	// Read pump: only there to process control frames and notice the close
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-ob.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(response.RosterFromSnapshot(snap)); err != nil {
				logger.Debug("roster stream write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
