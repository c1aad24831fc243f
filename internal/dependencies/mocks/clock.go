package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/hptracker/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. It is safe to
// read from observer goroutines while a test moves it.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// NewTicker returns a ticker that fires every d of real time and on every
// Tick. Now stays frozen either way.
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	t := &MockTicker{
		real: time.NewTicker(d),
		c:    make(chan time.Time, 1),
		done: make(chan struct{}),
	}
	go t.forward()

	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tick fires every live ticker once
func (c *MockClock) Tick() {
	c.mu.Lock()
	now := c.currentTime
	tickers := append([]*MockTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// Tickers returns how many tickers have not been stopped
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := 0
	for _, t := range c.tickers {
		select {
		case <-t.done:
		default:
			live++
		}
	}
	return live
}

// MockTicker is the ticker handed out by MockClock
type MockTicker struct {
	real *time.Ticker
	c    chan time.Time
	done chan struct{}
	once sync.Once
}

func (t *MockTicker) forward() {
	for {
		select {
		case now := <-t.real.C:
			t.fire(now)
		case <-t.done:
			return
		}
	}
}

func (t *MockTicker) fire(now time.Time) {
	select {
	case <-t.done:
	case t.c <- now:
	default:
	}
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time { return t.c }

// Stop stops the ticker
func (t *MockTicker) Stop() {
	t.once.Do(func() {
		t.real.Stop()
		close(t.done)
	})
}
