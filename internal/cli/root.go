package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/hptracker/internal/dependencies/random"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/session"
)

var (
	cfg        *Config
	client     *Client
	keys       *session.FileStore
	controller *tracker.Controller
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "hptracker",
		Short: "Track party hit points from the terminal",
		Long: `hptracker follows a tabletop session's hit points through the server's
JSON API.

Log in to a room as a player or as the DM, keep your character's HP up to
date, and watch the party roster change live. Your identity is kept in a
local session file between invocations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", cfg.Output)
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			// Create HTTP client and the controller it backs
			client = NewClient(cfg.ServerURL, logger)
			keys = session.NewFileStore(cfg.SessionFile)
			controller = tracker.NewController(client, client, random.New(), logger)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: HPTRACKER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: HPTRACKER_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCharacterCmd())
	rootCmd.AddCommand(newAdjustCmd("heal", 1))
	rootCmd.AddCommand(newAdjustCmd("damage", -1))
	rootCmd.AddCommand(newRosterCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newNewRoomCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
