package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/roster"
)

// RenderFunc turns a roster snapshot into ready-to-send SSE messages
type RenderFunc func(ctx context.Context, snap model.Snapshot) [][]byte

// Hub fans one room's roster observation out to its SSE clients
type Hub struct {
	room        model.RoomCode
	clients     map[*Client]bool
	mu          sync.RWMutex
	logger      *slog.Logger
	observation *roster.Observation
	render      RenderFunc

	// latest rendered messages, replayed to clients that join later
	latest [][]byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(room model.RoomCode, observation *roster.Observation, render RenderFunc, logger *slog.Logger) *Hub {
	return &Hub{
		room:        room,
		clients:     make(map[*Client]bool),
		logger:      logger.With(slog.String("room", string(room))),
		observation: observation,
		render:      render,
		done:        make(chan struct{}),
	}
}

// Run forwards snapshots until the hub is closed
func (h *Hub) Run() {
	h.logger.Info("sse hub started")
	for {
		select {
		case snap, ok := <-h.observation.C:
			if !ok {
				h.disconnectAll()
				return
			}
			h.broadcast(h.render(context.Background(), snap))

		case <-h.done:
			h.disconnectAll()
			return
		}
	}
}

func (h *Hub) broadcast(messages [][]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = messages

	droppedCount := 0
	for client := range h.clients {
		for _, msg := range messages {
			select {
			case client.send <- msg:
			default:
				droppedCount++
				h.logger.Warn("sse message dropped - client buffer full",
					slog.String("client_id", client.id))
			}
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("sse broadcast partial failure",
			slog.Int("clients", len(h.clients)),
			slog.Int("dropped", droppedCount))
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	clientCount := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
}

// Register adds a client and replays the latest roster to it
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	for _, msg := range h.latest {
		client.send <- msg
	}
	h.logger.Info("sse client registered",
		slog.String("client_id", client.id),
		slog.String("user", client.label),
		slog.Int("total_clients", len(h.clients)))
}

// Unregister removes a client and returns how many remain
func (h *Hub) Unregister(client *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Info("sse client unregistered",
			slog.String("client_id", client.id),
			slog.Duration("connection_duration", time.Since(client.connectedAt)),
			slog.Int("total_clients", len(h.clients)))
	}
	return len(h.clients)
}

// Close stops the roster observation and disconnects every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.observation.Stop()
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data
// Multi-line data is properly formatted with "data: " prefix on each line
func formatSSEMessage(eventName, data string) []byte {
	msg := "event: " + eventName + "\n"
	for _, line := range splitLines(data) {
		msg += "data: " + line + "\n"
	}
	msg += "\n"
	return []byte(msg)
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current string
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// HubManager keeps one hub per room with at least one connected client.
// A room's observation starts with its first client and stops with its last.
type HubManager struct {
	hubs     map[model.RoomCode]*Hub
	mu       sync.Mutex
	observer *roster.Observer
	render   RenderFunc
	logger   *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(observer *roster.Observer, render RenderFunc, logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:     make(map[model.RoomCode]*Hub),
		observer: observer,
		render:   render,
		logger:   logger.With(slog.String("component", "sse")),
	}
}

// Join registers a new client for the room, starting the room's hub if needed
func (m *HubManager) Join(room model.RoomCode, label string) (*Hub, *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[room]
	if !ok {
		observation := m.observer.Observe(context.Background(), room)
		hub = NewHub(room, observation, m.render, m.logger)
		m.hubs[room] = hub
		go hub.Run()
	}

	client := NewClient(label)
	hub.Register(client)
	return hub, client
}

// Leave unregisters the client and tears the hub down when it was the last
func (m *HubManager) Leave(hub *Hub, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub.Unregister(client) > 0 {
		return
	}
	if m.hubs[hub.room] == hub {
		delete(m.hubs, hub.room)
	}
	hub.Close()
	m.logger.Info("sse hub removed", slog.String("room", string(hub.room)))
}

// GetHub returns the hub for a room, or nil if nobody is watching it
func (m *HubManager) GetHub(room model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[room]
}

// Close shuts every hub down
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for room, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, room)
	}
}
