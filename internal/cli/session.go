package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/hptracker/internal/services/tracker"
)

func newLoginCmd() *cobra.Command {
	var room, name string
	var dm bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Enter a room as a player or the DM",
		Long: `Enter a room. Players join an existing room code; a DM may leave --room
empty to start a new room with a generated code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := controller.Login(cmd.Context(), keys, tracker.LoginInput{
				RoomCode: room,
				Username: name,
				AsDM:     dm,
			})
			if err != nil {
				return err
			}

			output(cmd).Print(statusFromScreen(screen))
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room code")
	cmd.Flags().StringVar(&name, "name", "", "Your username (required)")
	cmd.Flags().BoolVar(&dm, "dm", false, "Enter as the Dungeon Master")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := controller.Logout(keys); err != nil {
				return err
			}
			output(cmd).PrintMessage("Left the room")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current room and your character",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := controller.Open(cmd.Context(), keys)
			if err != nil {
				return err
			}
			output(cmd).Print(statusFromScreen(screen))
			return nil
		},
	}
}
