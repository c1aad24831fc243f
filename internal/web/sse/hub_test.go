package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/hptracker/internal/dependencies/mocks"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/players"
	"github.com/mcoot/hptracker/internal/services/roster"
	"github.com/mcoot/hptracker/internal/storage/memory"
	"github.com/mcoot/hptracker/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "roster-dm",
			data:      "<table>\n  <tr>row</tr>\n</table>",
			expected:  "event: roster-dm\ndata: <table>\ndata:   <tr>row</tr>\ndata: </table>\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "line1\nline2", []string{"line1", "line2"}},
		{"trailing newline", "line1\n", []string{"line1"}},
		{"empty string", "", []string{""}},
		{"crlf line endings", "line1\r\nline2\r\n", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitLines(%q) returned %d lines, want %d", tt.input, len(result), len(tt.expected))
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

type fixture struct {
	store   *memory.Storage
	repo    *players.Repository
	manager *HubManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	logger := testutil.NopLogger()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	observer := roster.NewObserver(store, clock, 10*time.Millisecond, logger)
	manager := NewHubManager(observer, RosterRenderer(logger), logger)
	t.Cleanup(manager.Close)
	return &fixture{store: store, repo: players.New(store, logger), manager: manager}
}

// receive waits for a message containing want
func receive(t *testing.T, client *Client, want string) string {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				t.Fatalf("client channel closed while waiting for %q", want)
			}
			if strings.Contains(string(msg), want) {
				return string(msg)
			}
		case <-timeout:
			t.Fatalf("no message containing %q", want)
		}
	}
}

func TestHubManager_JoinStreamsRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.repo.SavePlayer(ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}); err != nil {
		t.Fatal(err)
	}

	hub, client := f.manager.Join("ABC", "Gary")
	defer f.manager.Leave(hub, client)

	msg := receive(t, client, "event: roster-dm")
	if !strings.Contains(msg, "Thorin") || !strings.Contains(msg, "/dm/adjust") {
		t.Errorf("dm roster missing entry or controls: %q", msg)
	}
	party := receive(t, client, "event: roster-party")
	if strings.Contains(party, "/dm/adjust") {
		t.Errorf("party roster should not carry DM controls: %q", party)
	}

	if _, err := f.repo.AdjustHealth(ctx, "ABC", "Alice", -5); err != nil {
		t.Fatal(err)
	}
	receive(t, client, "15 / 20")
}

func TestHubManager_LateJoinerGetsLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.repo.SavePlayer(ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}); err != nil {
		t.Fatal(err)
	}

	hub1, first := f.manager.Join("ABC", "Gary")
	defer f.manager.Leave(hub1, first)
	receive(t, first, "Thorin")

	hub2, second := f.manager.Join("ABC", "Alice")
	defer f.manager.Leave(hub2, second)
	if hub1 != hub2 {
		t.Fatal("same room should share a hub")
	}
	receive(t, second, "Thorin")
}

func TestHubManager_LastLeaveTearsDown(t *testing.T) {
	f := newFixture(t)

	hub, c1 := f.manager.Join("ABC", "Gary")
	_, c2 := f.manager.Join("ABC", "Alice")
	if hub.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d, want 2", hub.ClientCount())
	}

	f.manager.Leave(hub, c1)
	if f.manager.GetHub("ABC") != hub {
		t.Fatal("hub removed while a client remained")
	}

	f.manager.Leave(hub, c2)
	if f.manager.GetHub("ABC") != nil {
		t.Fatal("hub still registered after last client left")
	}

	// The observation is stopped, so its channel is closed
	select {
	case _, ok := <-hub.observation.C:
		for ok {
			_, ok = <-hub.observation.C
		}
	case <-time.After(time.Second):
		t.Fatal("observation not stopped")
	}

	// A new client starts a fresh hub
	hub2, c3 := f.manager.Join("ABC", "Gary")
	defer f.manager.Leave(hub2, c3)
	if hub2 == hub {
		t.Error("expected a new hub after teardown")
	}
}

func TestHubManager_RoomsAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hubA, a := f.manager.Join("ABC", "Gary")
	defer f.manager.Leave(hubA, a)
	hubX, x := f.manager.Join("XYZ", "Dana")
	defer f.manager.Leave(hubX, x)
	if hubA == hubX {
		t.Fatal("different rooms share a hub")
	}
	receive(t, x, "event: roster-party")

	if err := f.repo.SavePlayer(ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}); err != nil {
		t.Fatal(err)
	}
	receive(t, a, "Thorin")

	select {
	case msg := <-x.send:
		if strings.Contains(string(msg), "Thorin") {
			t.Errorf("room XYZ received ABC's roster: %q", msg)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServeSSE(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/room/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ServeSSE(rec, req, f.manager, "ABC", "Gary")
	}()

	deadline := time.Now().Add(time.Second)
	for f.manager.GetHub("ABC") == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.manager.GetHub("ABC") == nil {
		t.Fatal("client never joined")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ServeSSE did not return after disconnect")
	}

	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "event: connected\n") {
		t.Errorf("stream did not start with connected event: %q", rec.Body.String())
	}
	if f.manager.GetHub("ABC") != nil {
		t.Error("hub left running after the only client disconnected")
	}
}
