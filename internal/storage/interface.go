package storage

//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=mocks/store.go -package=mocks

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored at the path
var ErrNotFound = errors.New("not found")

// Store is a hierarchical key-value store addressed by slash-separated paths.
// Values are opaque bytes; callers encode and decode them.
type Store interface {
	// Get returns the value at path, or ErrNotFound
	Get(ctx context.Context, path string) ([]byte, error)

	// Set overwrites the value at path
	Set(ctx context.Context, path string, value []byte) error

	// List returns the direct children of dir keyed by their final path segment.
	// An empty or unknown dir yields an empty map.
	List(ctx context.Context, dir string) (map[string][]byte, error)

	Close() error
}

// Subscriber is implemented by stores that can push changes to observers.
// Stores without it must be polled.
type Subscriber interface {
	// Subscribe calls onChange with the full set of children of dir, once
	// straight away and again after every write to a direct child.
	// After unsubscribe returns, onChange is not called again.
	Subscribe(ctx context.Context, dir string, onChange func(map[string][]byte)) (unsubscribe func(), err error)
}
