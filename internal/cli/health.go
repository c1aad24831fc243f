package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newNewRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-room",
		Short: "Get a fresh room code from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.CreateRoom(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
