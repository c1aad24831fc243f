package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/hptracker/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Writes are announced on a per-directory channel so subscribers see them
// without polling.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store      = (*Storage)(nil)
	_ storage.Subscriber = (*Storage)(nil)
)

func (s *Storage) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, valueKey(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Set(ctx context.Context, path string, value []byte) error {
	dir, name := storage.Split(path)

	// Value, index entry and notification go out together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, valueKey(path), value, s.cfg.RoomTTL)
	pipe.SAdd(ctx, indexKey(dir), name)
	if s.cfg.RoomTTL > 0 {
		pipe.Expire(ctx, indexKey(dir), s.cfg.RoomTTL)
	}
	pipe.Publish(ctx, channelKey(dir), name)

	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) List(ctx context.Context, dir string) (map[string][]byte, error) {
	dir = storage.CleanDir(dir)

	names, err := s.client.SMembers(ctx, indexKey(dir)).Result()
	if err != nil {
		return nil, err
	}

	children := make(map[string][]byte, len(names))
	if len(names) == 0 {
		return children, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = valueKey(childPath(dir, name))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Expired since it was indexed
			continue
		}
		children[names[i]] = []byte(str)
	}
	return children, nil
}

func (s *Storage) Subscribe(ctx context.Context, dir string, onChange func(map[string][]byte)) (func(), error) {
	dir = storage.CleanDir(dir)

	pubsub := s.client.Subscribe(ctx, channelKey(dir))
	// Wait for the subscription to be confirmed so no write is missed between
	// the initial read and the first message
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	onChange(s.listOrEmpty(subCtx, dir))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				children := s.listOrEmpty(subCtx, dir)
				if subCtx.Err() != nil {
					return
				}
				onChange(children)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			wg.Wait()
		})
	}, nil
}

// listOrEmpty degrades read failures to an empty directory
func (s *Storage) listOrEmpty(ctx context.Context, dir string) map[string][]byte {
	children, err := s.List(ctx, dir)
	if err != nil {
		return map[string][]byte{}
	}
	return children
}
