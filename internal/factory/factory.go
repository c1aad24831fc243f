package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/hptracker/internal/api"
	"github.com/mcoot/hptracker/internal/dependencies/clock"
	"github.com/mcoot/hptracker/internal/dependencies/random"
	"github.com/mcoot/hptracker/internal/services/players"
	"github.com/mcoot/hptracker/internal/services/roster"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/storage"
	"github.com/mcoot/hptracker/internal/storage/memory"
	redisstorage "github.com/mcoot/hptracker/internal/storage/redis"
	sqlitestorage "github.com/mcoot/hptracker/internal/storage/sqlite"
	"github.com/mcoot/hptracker/internal/web"
	"github.com/mcoot/hptracker/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Players    *players.Repository
	Observer   *roster.Observer
	Controller *tracker.Controller
	HubManager *sse.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// PollInterval is how often stores without change notification are
	// re-read. Zero means roster.DefaultPollInterval.
	PollInterval time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg.PollInterval, logger), nil
}

func openStore(cfg Config) (storage.Store, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, pollInterval time.Duration, logger *slog.Logger) *App {
	if pollInterval <= 0 {
		pollInterval = roster.DefaultPollInterval
	}

	repo := players.New(store, logger)
	observer := roster.NewObserver(store, clk, pollInterval, logger)
	controller := tracker.NewController(repo, observer, rnd, logger)
	hubManager := sse.NewHubManager(observer, sse.RosterRenderer(logger), logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Players:    repo,
		Observer:   observer,
		Controller: controller,
		HubManager: hubManager,
	}
}

// Close releases the hubs and the store
func (a *App) Close() error {
	a.HubManager.Close()
	return a.Storage.Close()
}

// Handler serves the JSON API under /api/ and the web UI everywhere else
func (a *App) Handler(logger *slog.Logger, staticDir string) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Players:    a.Players,
		Observer:   a.Observer,
		Controller: a.Controller,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:     logger,
		Controller: a.Controller,
		Observer:   a.Observer,
		HubManager: a.HubManager,
		StaticDir:  staticDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}
