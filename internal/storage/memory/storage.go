package memory

import (
	"context"
	"sync"

	"github.com/mcoot/hptracker/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// It pushes changes to subscribers synchronously while holding its lock, so
// subscriber callbacks must not block or call back into the store.
type Storage struct {
	mu sync.RWMutex

	// dirs maps a directory to its children, which doubles as the List index
	dirs        map[string]map[string][]byte
	subscribers map[string]map[int]func(map[string][]byte)
	nextSubID   int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		dirs:        make(map[string]map[string][]byte),
		subscribers: make(map[string]map[int]func(map[string][]byte)),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store      = (*Storage)(nil)
	_ storage.Subscriber = (*Storage)(nil)
)

func (s *Storage) Get(ctx context.Context, path string) ([]byte, error) {
	dir, name := storage.Split(path)

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.dirs[dir][name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(value), nil
}

func (s *Storage) Set(ctx context.Context, path string, value []byte) error {
	dir, name := storage.Split(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	children, ok := s.dirs[dir]
	if !ok {
		children = make(map[string][]byte)
		s.dirs[dir] = children
	}
	children[name] = clone(value)

	for _, fn := range s.subscribers[dir] {
		fn(s.snapshotLocked(dir))
	}
	return nil
}

func (s *Storage) List(ctx context.Context, dir string) (map[string][]byte, error) {
	dir = storage.CleanDir(dir)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(dir), nil
}

func (s *Storage) Subscribe(ctx context.Context, dir string, onChange func(map[string][]byte)) (func(), error) {
	dir = storage.CleanDir(dir)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	subs, ok := s.subscribers[dir]
	if !ok {
		subs = make(map[int]func(map[string][]byte))
		s.subscribers[dir] = subs
	}
	subs[id] = onChange
	onChange(s.snapshotLocked(dir))
	s.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers[dir], id)
			if len(s.subscribers[dir]) == 0 {
				delete(s.subscribers, dir)
			}
		})
	}
	// Cancelling ctx unsubscribes as well
	stopWatch := context.AfterFunc(ctx, remove)
	return func() {
		stopWatch()
		remove()
	}, nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) snapshotLocked(dir string) map[string][]byte {
	out := make(map[string][]byte, len(s.dirs[dir]))
	for name, value := range s.dirs[dir] {
		out[name] = clone(value)
	}
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
