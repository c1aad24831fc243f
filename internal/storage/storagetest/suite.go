// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hptracker/internal/storage"
)

// StoreSuite exercises the storage.Store contract. Backends run it with their
// own constructor.
type StoreSuite struct {
	suite.Suite
	NewStore func(t *testing.T) storage.Store

	store storage.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = s.NewStore(s.T())
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestSetAndGet() {
	err := s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte(`{"name":"Thorin"}`))
	s.Require().NoError(err)

	value, err := s.store.Get(s.ctx, "rooms/ABC/players/Alice")
	s.Require().NoError(err)
	s.JSONEq(`{"name":"Thorin"}`, string(value))
}

func (s *StoreSuite) TestGetNotFound() {
	_, err := s.store.Get(s.ctx, "rooms/ABC/players/Nobody")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StoreSuite) TestSetOverwrites() {
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("one")))
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("two")))

	value, err := s.store.Get(s.ctx, "rooms/ABC/players/Alice")
	s.Require().NoError(err)
	s.Equal("two", string(value))

	children, err := s.store.List(s.ctx, "rooms/ABC/players")
	s.Require().NoError(err)
	s.Len(children, 1)
}

func (s *StoreSuite) TestListDirectChildrenOnly() {
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Bob", []byte("b")))
	s.Require().NoError(s.store.Set(s.ctx, "rooms/XYZ/players/Carol", []byte("c")))

	children, err := s.store.List(s.ctx, "rooms/ABC/players")
	s.Require().NoError(err)
	s.Equal(map[string][]byte{"Alice": []byte("a"), "Bob": []byte("b")}, children)
}

func (s *StoreSuite) TestListTrailingSlash() {
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))

	children, err := s.store.List(s.ctx, "rooms/ABC/players/")
	s.Require().NoError(err)
	s.Len(children, 1)
}

func (s *StoreSuite) TestListEmpty() {
	children, err := s.store.List(s.ctx, "rooms/NONE/players")
	s.Require().NoError(err)
	s.Empty(children)
}

// SubscriberSuite adds the push contract on top of StoreSuite
type SubscriberSuite struct {
	StoreSuite
}

type recorder struct {
	mu    sync.Mutex
	calls []map[string][]byte
}

func (r *recorder) record(children map[string][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, children)
}

func (r *recorder) last() map[string][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (s *SubscriberSuite) subscriber() storage.Subscriber {
	sub, ok := s.store.(storage.Subscriber)
	s.Require().True(ok, "store does not implement storage.Subscriber")
	return sub
}

func (s *SubscriberSuite) TestSubscribeDeliversCurrentState() {
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))

	rec := &recorder{}
	unsubscribe, err := s.subscriber().Subscribe(s.ctx, "rooms/ABC/players", rec.record)
	s.Require().NoError(err)
	defer unsubscribe()

	s.Eventually(func() bool {
		return string(rec.last()["Alice"]) == "a"
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SubscriberSuite) TestSubscribeDeliversChanges() {
	rec := &recorder{}
	unsubscribe, err := s.subscriber().Subscribe(s.ctx, "rooms/ABC/players", rec.record)
	s.Require().NoError(err)
	defer unsubscribe()

	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Bob", []byte("b")))

	s.Eventually(func() bool {
		last := rec.last()
		return len(last) == 2 && string(last["Bob"]) == "b"
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SubscriberSuite) TestSubscribeIgnoresOtherRooms() {
	rec := &recorder{}
	unsubscribe, err := s.subscriber().Subscribe(s.ctx, "rooms/ABC/players", rec.record)
	s.Require().NoError(err)
	defer unsubscribe()

	s.Eventually(func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(s.store.Set(s.ctx, "rooms/XYZ/players/Carol", []byte("c")))
	s.Never(func() bool { return rec.count() > 1 }, 200*time.Millisecond, 20*time.Millisecond)
}

func (s *SubscriberSuite) TestUnsubscribeStopsDeliveries() {
	rec := &recorder{}
	unsubscribe, err := s.subscriber().Subscribe(s.ctx, "rooms/ABC/players", rec.record)
	s.Require().NoError(err)

	s.Eventually(func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	unsubscribe()
	unsubscribe()

	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))
	s.Never(func() bool { return rec.count() > 1 }, 200*time.Millisecond, 20*time.Millisecond)
}

func (s *SubscriberSuite) TestCancelledContextStopsDeliveries() {
	ctx, cancel := context.WithCancel(s.ctx)
	rec := &recorder{}
	unsubscribe, err := s.subscriber().Subscribe(ctx, "rooms/ABC/players", rec.record)
	s.Require().NoError(err)
	defer unsubscribe()

	s.Eventually(func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	// Teardown after cancel runs asynchronously
	time.Sleep(100 * time.Millisecond)

	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("a")))
	s.Never(func() bool { return rec.count() > 1 }, 200*time.Millisecond, 20*time.Millisecond)
}
