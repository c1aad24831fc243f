package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/hptracker/internal/factory"
	redisstorage "github.com/mcoot/hptracker/internal/storage/redis"
)

type Config struct {
	bind         string
	port         int
	storage      string
	redisURL     string
	roomTTL      time.Duration
	sqlitePath   string
	pollInterval time.Duration
	staticDir    string
	verbose      bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.redisURL == "" {
			return errors.New("--redis-url is required with --storage redis")
		}
	case factory.StorageTypeSQLite:
		if c.sqlitePath == "" {
			return errors.New("--sqlite-path is required with --storage sqlite")
		}
	default:
		return fmt.Errorf("invalid storage %q: must be memory, redis or sqlite", c.storage)
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", c.pollInterval)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HPTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "hptracker-server",
		Short: "Serve the party hit point tracker",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "", "address to bind to (env: HPTRACKER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: HPTRACKER_PORT)")
	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeMemory, "storage backend: memory, redis or sqlite (env: HPTRACKER_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection url (env: HPTRACKER_REDIS_URL)")
	fs.DurationVar(&cfg.roomTTL, "room-ttl", redisstorage.DefaultConfig().RoomTTL, "expire redis rooms idle for this long, 0 to keep forever (env: HPTRACKER_ROOM_TTL)")
	fs.StringVar(&cfg.sqlitePath, "sqlite-path", "hptracker.db", "sqlite database file (env: HPTRACKER_SQLITE_PATH)")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", time.Second, "how often the sqlite store is re-read for roster changes (env: HPTRACKER_POLL_INTERVAL)")
	fs.StringVar(&cfg.staticDir, "static-dir", "", "directory served under /static/ (env: HPTRACKER_STATIC_DIR)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: HPTRACKER_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
