package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// roomArg is the --room flag, falling back to the logged-in room
func roomArg(room string) (model.RoomCode, error) {
	if room != "" {
		return model.ParseRoomCode(room)
	}
	id, err := controller.Identity(keys)
	if err != nil {
		if errors.Is(err, tracker.ErrNotInRoom) {
			return "", errors.New("not in a room; log in or pass --room")
		}
		return "", err
	}
	return id.RoomCode, nil
}

func newRosterCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show the party's hit points",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomArg(room)
			if err != nil {
				return err
			}
			output(cmd).Print(client.Current(cmd.Context(), code))
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room code (default: the room you are in)")

	return cmd
}

func newWatchCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the party's hit points live",
		Long: `Stream the room's roster and print it every time it changes.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomArg(room)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := output(cmd)
			if cfg.Output != "json" {
				out.PrintMessage("Watching room " + string(code))
			}
			return watch(ctx, code, out)
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room code (default: the room you are in)")

	return cmd
}

func watch(ctx context.Context, code model.RoomCode, out *Output) error {
	err := client.WatchRoster(ctx, code, func(snap model.Snapshot) {
		out.Print(snap)
	})
	if err != nil {
		return err
	}
	if cfg.Output != "json" {
		out.PrintMessage("Disconnected")
	}
	return nil
}
