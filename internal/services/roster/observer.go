package roster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/hptracker/internal/dependencies/clock"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/players"
	"github.com/mcoot/hptracker/internal/storage"
)

// DefaultPollInterval is how often stores without push support are re-read
const DefaultPollInterval = time.Second

// Observer produces roster snapshots for rooms
type Observer struct {
	store        storage.Store
	clock        clock.Clock
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewObserver creates an Observer. A non-positive pollInterval uses
// DefaultPollInterval.
func NewObserver(store storage.Store, clock clock.Clock, pollInterval time.Duration, logger *slog.Logger) *Observer {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Observer{
		store:        store,
		clock:        clock,
		pollInterval: pollInterval,
		logger:       logger.With(slog.String("component", "roster")),
	}
}

// Current reads the room once. Store failures yield an empty snapshot.
func (o *Observer) Current(ctx context.Context, room model.RoomCode) model.Snapshot {
	children, err := o.store.List(ctx, storage.PlayersDir(room))
	if err != nil {
		o.logger.Warn("roster read failed",
			slog.String("room", string(room)),
			slog.String("error", err.Error()),
		)
		children = nil
	}
	return o.snapshot(room, children)
}

func (o *Observer) snapshot(room model.RoomCode, children map[string][]byte) model.Snapshot {
	records := players.DecodeAll(children, o.logger)
	return model.Snapshot{
		RoomCode: room,
		Entries:  Project(records),
		Players:  len(records),
		At:       o.clock.Now(),
	}
}

// Observation is a live view of one room. C only ever holds the newest
// snapshot, so a slow reader skips intermediate states.
type Observation struct {
	C <-chan model.Snapshot

	ch      chan model.Snapshot
	mu      sync.Mutex
	stopped bool
	stop    func()
	once    sync.Once
}

// deliver replaces any unread snapshot with s
func (ob *Observation) deliver(s model.Snapshot) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	if ob.stopped {
		return
	}
	select {
	case <-ob.ch:
	default:
	}
	ob.ch <- s
}

// Stop ends the observation and closes C. No snapshot is delivered after
// Stop returns.
func (ob *Observation) Stop() {
	ob.once.Do(func() {
		ob.stop()
		ob.mu.Lock()
		ob.stopped = true
		close(ob.ch)
		ob.mu.Unlock()
	})
}

// Observe starts watching a room. Stores that implement storage.Subscriber
// push changes; any other store is polled. The observation also ends when
// ctx is cancelled, but callers must still call Stop.
func (o *Observer) Observe(ctx context.Context, room model.RoomCode) *Observation {
	ch := make(chan model.Snapshot, 1)
	ob := &Observation{C: ch, ch: ch}

	logger := o.logger.With(slog.String("room", string(room)))
	ctx, cancel := context.WithCancel(ctx)

	if sub, ok := o.store.(storage.Subscriber); ok {
		unsubscribe, err := sub.Subscribe(ctx, storage.PlayersDir(room), func(children map[string][]byte) {
			ob.deliver(o.snapshot(room, children))
		})
		if err == nil {
			logger.Debug("roster observation started", slog.String("mode", "push"))
			ob.stop = func() {
				cancel()
				unsubscribe()
			}
			return ob
		}
		logger.Warn("subscribe failed, falling back to polling", slog.String("error", err.Error()))
	}

	logger.Debug("roster observation started", slog.String("mode", "poll"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.poll(ctx, room, ob)
	}()
	ob.stop = func() {
		cancel()
		<-done
	}
	return ob
}

func (o *Observer) poll(ctx context.Context, room model.RoomCode, ob *Observation) {
	ticker := o.clock.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		snap := o.Current(ctx, room)
		if ctx.Err() != nil {
			return
		}
		ob.deliver(snap)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
	}
}
