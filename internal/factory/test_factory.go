package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/hptracker/internal/dependencies/mocks"
	"github.com/mcoot/hptracker/internal/storage"
	"github.com/mcoot/hptracker/internal/storage/memory"
)

// TestPollInterval keeps polling stores responsive in tests
const TestPollInterval = 20 * time.Millisecond

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App over an in-memory store with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStore(memory.New())
}

// NewTestAppWithStore creates an App over the given store with mocked dependencies
func NewTestAppWithStore(store storage.Store) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, TestPollInterval, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
