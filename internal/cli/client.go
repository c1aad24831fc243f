package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// Client is an HTTP client for the API. It also serves as the player and
// roster backend of the CLI's view controller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure Client can back the view controller
var (
	_ tracker.Players      = (*Client)(nil)
	_ tracker.RosterReader = (*Client)(nil)
)

// NewClient creates a new API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is lets callers match API errors against the model's sentinel errors
func (e *APIError) Is(target error) bool {
	return e.Code == "PLAYER_NOT_FOUND" && target == model.ErrPlayerNotFound
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request", slog.String("method", method), slog.String("url", u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api response", slog.Int("status", resp.StatusCode), slog.Int("size", len(respBody)))

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

func roomPath(room model.RoomCode) string {
	return "/api/v1/rooms/" + url.PathEscape(string(room))
}

func playerPath(room model.RoomCode, name model.PlayerName) string {
	return roomPath(room) + "/players/" + url.PathEscape(string(name))
}

// Health checks the server
func (c *Client) Health(ctx context.Context) (HealthResult, error) {
	var result HealthResult
	err := c.Get(ctx, "/api/v1/health", &result)
	return result, err
}

// CreateRoom asks the server for a fresh room code
func (c *Client) CreateRoom(ctx context.Context) (RoomResult, error) {
	var result RoomResult
	err := c.Post(ctx, "/api/v1/rooms", nil, &result)
	return result, err
}

// EnsurePlayer creates the player's record if it does not exist yet
func (c *Client) EnsurePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error) {
	var p Player
	if err := c.Post(ctx, playerPath(room, name), nil, &p); err != nil {
		return nil, err
	}
	record := p.toModel()
	return &record, nil
}

// GetPlayer reads one record. A missing record matches model.ErrPlayerNotFound.
func (c *Client) GetPlayer(ctx context.Context, room model.RoomCode, name model.PlayerName) (*model.PlayerRecord, error) {
	var p Player
	if err := c.Get(ctx, playerPath(room, name), &p); err != nil {
		return nil, err
	}
	record := p.toModel()
	return &record, nil
}

// SavePlayer overwrites a record
func (c *Client) SavePlayer(ctx context.Context, room model.RoomCode, name model.PlayerName, record model.PlayerRecord) error {
	req := map[string]any{
		"name":       record.CharacterName,
		"max_hp":     record.MaxHP,
		"current_hp": record.CurrentHP,
	}
	return c.Put(ctx, playerPath(room, name), req, nil)
}

// AdjustHealth heals or damages a player
func (c *Client) AdjustHealth(ctx context.Context, room model.RoomCode, name model.PlayerName, delta int) (*model.PlayerRecord, error) {
	var p Player
	if err := c.Post(ctx, playerPath(room, name)+"/adjust", map[string]int{"delta": delta}, &p); err != nil {
		return nil, err
	}
	record := p.toModel()
	return &record, nil
}

// Current returns the room's roster. An unreachable server yields an
// empty roster.
func (c *Client) Current(ctx context.Context, room model.RoomCode) model.Snapshot {
	var snap model.Snapshot
	if err := c.Get(ctx, roomPath(room)+"/roster", &snap); err != nil {
		c.logger.Warn("failed to read roster, showing empty roster",
			slog.String("room", string(room)),
			slog.String("error", err.Error()))
		return model.Snapshot{RoomCode: room}
	}
	return snap
}

// WatchRoster streams roster snapshots to fn until ctx is cancelled or the
// server closes the stream
func (c *Client) WatchRoster(ctx context.Context, room model.RoomCode, fn func(model.Snapshot)) error {
	wsURL, err := websocketURL(c.baseURL + roomPath(room) + "/roster/ws")
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	c.logger.Debug("roster stream connected", slog.String("url", wsURL))

	// Unblock the read below once ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var snap model.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		fn(snap)
	}
}

func websocketURL(httpURL string) (string, error) {
	u, err := url.Parse(httpURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.New("server url must start with http:// or https://")
	}
	return u.String(), nil
}
