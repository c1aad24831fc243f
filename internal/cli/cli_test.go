package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hptracker/internal/api"
	"github.com/mcoot/hptracker/internal/factory"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// syncBuffer is a bytes.Buffer safe to read while a command writes to it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Players:    s.app.Players,
		Observer:   s.app.Observer,
		Controller: s.app.Controller,
	}))
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
	_ = s.app.Close()
}

// user is one person's CLI with their own session file
type user struct {
	s           *CLISuite
	sessionFile string
}

func (s *CLISuite) newUser() *user {
	return &user{s: s, sessionFile: filepath.Join(s.T().TempDir(), "session.json")}
}

func (u *user) runContext(ctx context.Context, out io.Writer, args ...string) error {
	root := NewRootCmd()
	root.SetArgs(append([]string{
		"--server", u.s.server.URL,
		"--session-file", u.sessionFile,
	}, args...))
	root.SetOut(out)
	root.SetErr(io.Discard)
	return root.ExecuteContext(ctx)
}

func (u *user) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := u.runContext(context.Background(), &out, args...)
	return out.String(), err
}

func (u *user) mustRun(args ...string) string {
	out, err := u.run(args...)
	u.s.Require().NoError(err, "hptracker %s", strings.Join(args, " "))
	return out
}

func (u *user) status() Status {
	var st Status
	out := u.mustRun("--output", "json", "status")
	u.s.Require().NoError(json.Unmarshal([]byte(out), &st), out)
	return st
}

func (s *CLISuite) TestHealth() {
	out := s.newUser().mustRun("health")
	s.Contains(out, "Status: ok")
}

func (s *CLISuite) TestNewRoom() {
	s.app.MockRandom.QueueString("ROOM42")
	out := s.newUser().mustRun("new-room")
	s.Contains(out, "Room code: ROOM42")
}

func (s *CLISuite) TestPlayerFlow() {
	alice := s.newUser()

	out := alice.mustRun("login", "--room", "ABC", "--name", "alice")
	s.Contains(out, "Room: ABC")
	s.Contains(out, "(unnamed)")

	out = alice.mustRun("character", "--name", "Thorin", "--max", "20", "--current", "20")
	s.Contains(out, "Character: Thorin")
	s.Contains(out, "HP: 20 / 20")

	out = alice.mustRun("damage", "5")
	s.Contains(out, "HP: 15 / 20")

	out = alice.mustRun("heal", "100")
	s.Contains(out, "HP: 20 / 20")

	// Only changed flags are written
	out = alice.mustRun("character", "--current", "3")
	s.Contains(out, "Character: Thorin")
	s.Contains(out, "HP: 3 / 20")

	st := alice.status()
	s.Equal("player", st.View)
	s.Equal("ABC", st.RoomCode)
	s.Require().NotNil(st.Player)
	s.Equal(3, st.Player.CurrentHP)

	record, err := s.app.Players.GetPlayer(context.Background(), "ABC", "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerRecord{PlayerName: "alice", CharacterName: "Thorin", MaxHP: 20, CurrentHP: 3}, *record)
}

func (s *CLISuite) TestDMFlow() {
	dm := s.newUser()
	alice := s.newUser()
	bob := s.newUser()

	out := dm.mustRun("login", "--dm", "--name", "dm")
	s.Contains(out, "(dm)")
	room := dm.status().RoomCode
	s.Len(room, tracker.RoomCodeLength)

	alice.mustRun("login", "--room", room, "--name", "alice")
	alice.mustRun("character", "--name", "Thorin", "--max", "20", "--current", "20")
	bob.mustRun("login", "--room", room, "--name", "bob")

	out = dm.mustRun("roster")
	s.Contains(out, "Thorin")
	s.NotContains(out, "bob")
	s.Contains(out, "(1 without a character)")

	out = dm.mustRun("damage", "5", "--player", "alice")
	s.Contains(out, "HP: 15 / 20")
	out = dm.mustRun("damage", "100", "--player", "alice")
	s.Contains(out, "HP: 0 / 20")

	// Players cannot adjust each other
	_, err := bob.run("heal", "5", "--player", "alice")
	s.ErrorIs(err, tracker.ErrNotDM)

	// The DM has no character of their own
	_, err = dm.run("heal", "5")
	s.ErrorIs(err, tracker.ErrNotPlayer)

	_, err = dm.run("damage", "1", "--player", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *CLISuite) TestLogout() {
	alice := s.newUser()
	alice.mustRun("login", "--room", "ABC", "--name", "alice")

	_, err := alice.run("login", "--room", "XYZ", "--name", "alice")
	s.ErrorIs(err, tracker.ErrAlreadyInRoom)

	alice.mustRun("logout")
	s.Equal("login", alice.status().View)

	out := alice.mustRun("status")
	s.Contains(out, "Not in a room")

	_, err = alice.run("damage", "1")
	s.ErrorIs(err, tracker.ErrNotInRoom)

	_, err = alice.run("character", "--name", "Thorin")
	s.ErrorIs(err, tracker.ErrNotInRoom)
}

func (s *CLISuite) TestInvalidInput() {
	alice := s.newUser()

	_, err := alice.run("login", "--room", "", "--name", "alice")
	s.ErrorIs(err, model.ErrRoomCodeRequired)

	_, err = alice.run("login", "--room", "ABC", "--name", "a/b")
	s.ErrorIs(err, model.ErrInvalidName)

	alice.mustRun("login", "--room", "ABC", "--name", "alice")
	_, err = alice.run("damage", "lots")
	s.Error(err)
	_, err = alice.run("damage", "-3")
	s.Error(err)

	_, err = alice.run("--output", "yaml", "status")
	s.Error(err)
}

func (s *CLISuite) TestRosterByRoomFlag() {
	_, err := s.app.Players.EnsurePlayer(context.Background(), "ABC", "alice")
	s.Require().NoError(err)
	s.Require().NoError(s.app.Players.SavePlayer(context.Background(), "ABC", "alice",
		model.PlayerRecord{PlayerName: "alice", CharacterName: "Thorin", MaxHP: 8, CurrentHP: 2}))

	out := s.newUser().mustRun("--output", "json", "roster", "--room", "ABC")
	var snap model.Snapshot
	s.Require().NoError(json.Unmarshal([]byte(out), &snap))
	s.Require().Len(snap.Entries, 1)
	s.Equal(25, snap.Entries[0].Percent)

	_, err = s.newUser().run("roster")
	s.Error(err)
}

func (s *CLISuite) TestWatch() {
	alice := s.newUser()
	alice.mustRun("login", "--room", "ABC", "--name", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- alice.runContext(ctx, &out, "watch") }()

	s.Eventually(func() bool {
		return strings.Contains(out.String(), "No characters yet.")
	}, 3*time.Second, 10*time.Millisecond)

	s.Require().NoError(s.app.Players.SavePlayer(context.Background(), "ABC", "alice",
		model.PlayerRecord{PlayerName: "alice", CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))

	s.Eventually(func() bool {
		return strings.Contains(out.String(), "Thorin")
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(3 * time.Second):
		s.Fail("watch did not stop")
	}
	s.Contains(out.String(), "Disconnected")
}

func (s *CLISuite) TestRosterDegradesWhenServerDown() {
	alice := s.newUser()
	alice.mustRun("login", "--room", "ABC", "--name", "alice")
	s.server.Close()

	out := alice.mustRun("roster")
	s.Contains(out, "No characters yet.")
}

func TestAPIErrorMatchesSentinels(t *testing.T) {
	err := error(&APIError{Status: 404, Code: "PLAYER_NOT_FOUND", Message: "Player not found"})
	assert.True(t, errors.Is(err, model.ErrPlayerNotFound))
	assert.Equal(t, "Player not found (PLAYER_NOT_FOUND)", err.Error())

	err = &APIError{Status: 400, Code: "INVALID_REQUEST", Message: "bad"}
	assert.False(t, errors.Is(err, model.ErrPlayerNotFound))
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("http://localhost:8080/api/v1/rooms/ABC/roster/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/v1/rooms/ABC/roster/ws", u)

	u, err = websocketURL("https://hp.example.com/api/v1/rooms/ABC/roster/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://hp.example.com/api/v1/rooms/ABC/roster/ws", u)

	_, err = websocketURL("ftp://example.com")
	assert.Error(t, err)
}
