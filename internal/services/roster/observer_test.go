package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/hptracker/internal/dependencies/mocks"
	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/players"
	"github.com/mcoot/hptracker/internal/storage"
	"github.com/mcoot/hptracker/internal/storage/memory"
	storagemocks "github.com/mcoot/hptracker/internal/storage/mocks"
	"github.com/mcoot/hptracker/internal/storage/sqlite"
	"github.com/mcoot/hptracker/internal/testutil"
)

// ObserverSuite runs against one backend; push and poll variants share it
type ObserverSuite struct {
	suite.Suite
	newStore func(t *testing.T) storage.Store

	store    storage.Store
	repo     *players.Repository
	clock    *mocks.MockClock
	observer *Observer
	ctx      context.Context
}

func TestObserverPush(t *testing.T) {
	suite.Run(t, &ObserverSuite{
		newStore: func(*testing.T) storage.Store { return memory.New() },
	})
}

func TestObserverPoll(t *testing.T) {
	suite.Run(t, &ObserverSuite{
		newStore: func(t *testing.T) storage.Store {
			s, err := sqlite.Open(filepath.Join(t.TempDir(), "hp.db"))
			require.NoError(t, err)
			return s
		},
	})
}

func (s *ObserverSuite) SetupTest() {
	s.store = s.newStore(s.T())
	logger := testutil.NopLogger()
	s.repo = players.New(s.store, logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.observer = NewObserver(s.store, s.clock, 20*time.Millisecond, logger)
	s.ctx = context.Background()
}

func (s *ObserverSuite) TearDownTest() {
	_ = s.store.Close()
}

// waitFor reads snapshots until one satisfies cond
func (s *ObserverSuite) waitFor(ob *Observation, cond func(model.Snapshot) bool) model.Snapshot {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ob.C:
			s.Require().True(ok, "observation closed early")
			if cond(snap) {
				return snap
			}
		case <-timeout:
			s.FailNow("timed out waiting for snapshot")
		}
	}
}

func (s *ObserverSuite) TestInitialSnapshot() {
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))

	ob := s.observer.Observe(s.ctx, "ABC")
	defer ob.Stop()

	snap := s.waitFor(ob, func(model.Snapshot) bool { return true })
	s.Equal(model.RoomCode("ABC"), snap.RoomCode)
	s.Require().Len(snap.Entries, 1)
	s.Equal("Thorin", snap.Entries[0].CharacterName)
	s.Equal(s.clock.Now(), snap.At)
}

func (s *ObserverSuite) TestReflectsLaterWrites() {
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))

	ob := s.observer.Observe(s.ctx, "ABC")
	defer ob.Stop()
	s.waitFor(ob, func(model.Snapshot) bool { return true })

	_, err := s.repo.AdjustHealth(s.ctx, "ABC", "Alice", -5)
	s.Require().NoError(err)

	snap := s.waitFor(ob, func(snap model.Snapshot) bool {
		return len(snap.Entries) == 1 && snap.Entries[0].CurrentHP == 15
	})
	s.Equal(75, snap.Entries[0].Percent)
}

func (s *ObserverSuite) TestUnnamedPlayersCountedButNotListed() {
	ob := s.observer.Observe(s.ctx, "ABC")
	defer ob.Stop()

	_, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Bob")
	s.Require().NoError(err)

	snap := s.waitFor(ob, func(snap model.Snapshot) bool { return snap.Players == 1 })
	s.Empty(snap.Entries)

	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Bob", model.PlayerRecord{CharacterName: "Brick", MaxHP: 9, CurrentHP: 9}))
	s.waitFor(ob, func(snap model.Snapshot) bool { return len(snap.Entries) == 1 })
}

func (s *ObserverSuite) TestStopClosesChannel() {
	ob := s.observer.Observe(s.ctx, "ABC")
	ob.Stop()
	ob.Stop()

	// Drain anything delivered before Stop
	for range ob.C {
	}

	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin"}))
	_, ok := <-ob.C
	s.False(ok)
}

func (s *ObserverSuite) TestCurrent() {
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))
	_, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Bob")
	s.Require().NoError(err)

	snap := s.observer.Current(s.ctx, "ABC")
	s.Equal(2, snap.Players)
	s.Len(snap.Entries, 1)
}

func TestStoreFailureDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any(), "rooms/ABC/players").Return(nil, errors.New("unavailable")).AnyTimes()

	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	observer := NewObserver(store, clock, 10*time.Millisecond, testutil.NopLogger())

	snap := observer.Current(context.Background(), "ABC")
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 0, snap.Players)

	ob := observer.Observe(context.Background(), "ABC")
	defer ob.Stop()
	select {
	case snap := <-ob.C:
		assert.Empty(t, snap.Entries)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSubscribeFailureFallsBackToPolling(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := struct {
		*storagemocks.MockStore
		*storagemocks.MockSubscriber
	}{storagemocks.NewMockStore(ctrl), storagemocks.NewMockSubscriber(ctrl)}

	store.MockSubscriber.EXPECT().Subscribe(gomock.Any(), "rooms/ABC/players", gomock.Any()).Return(nil, errors.New("no pubsub"))
	store.MockStore.EXPECT().List(gomock.Any(), "rooms/ABC/players").Return(map[string][]byte{
		"Alice": []byte(`{"name":"Thorin","maxHP":20,"currentHP":20}`),
	}, nil).MinTimes(1)

	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	observer := NewObserver(store, clock, time.Hour, testutil.NopLogger())

	ob := observer.Observe(context.Background(), "ABC")
	select {
	case snap := <-ob.C:
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, "Thorin", snap.Entries[0].CharacterName)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
	ob.Stop()
}

func TestPollingFollowsClockTicks(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "hp.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	logger := testutil.NopLogger()
	repo := players.New(store, logger)
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	observer := NewObserver(store, clock, time.Hour, logger)

	ob := observer.Observe(ctx, "ABC")
	first := <-ob.C
	assert.Empty(t, first.Entries)
	assert.Equal(t, 1, clock.Tickers())

	require.NoError(t, repo.SavePlayer(ctx, "ABC", "Alice",
		model.PlayerRecord{PlayerName: "Alice", CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))

	select {
	case <-ob.C:
		t.Fatal("snapshot delivered before the next tick")
	case <-time.After(50 * time.Millisecond):
	}

	clock.Tick()
	select {
	case snap := <-ob.C:
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, "Thorin", snap.Entries[0].CharacterName)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after tick")
	}

	ob.Stop()
	assert.Equal(t, 0, clock.Tickers())
}
