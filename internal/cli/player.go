package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

func newCharacterCmd() *cobra.Command {
	var name string
	var maxHP, currentHP int

	cmd := &cobra.Command{
		Use:   "character",
		Short: "Edit your character's name and hit points",
		Long: `Edit your character. Only the flags you pass are changed; the rest keep
their stored values. Current HP is clamped to [0, max].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := controller.Open(cmd.Context(), keys)
			if err != nil {
				return err
			}
			if screen.View == tracker.ViewLogin {
				return tracker.ErrNotInRoom
			}
			if screen.View != tracker.ViewPlayer {
				return tracker.ErrNotPlayer
			}

			in := tracker.CharacterInput{
				CharacterName: screen.Record.CharacterName,
				MaxHP:         screen.Record.MaxHP,
				CurrentHP:     screen.Record.CurrentHP,
			}
			if cmd.Flags().Changed("name") {
				in.CharacterName = name
			}
			if cmd.Flags().Changed("max") {
				in.MaxHP = maxHP
			}
			if cmd.Flags().Changed("current") {
				in.CurrentHP = currentHP
			}

			record, err := controller.SaveCharacter(cmd.Context(), screen.Identity, in)
			if err != nil {
				return err
			}
			output(cmd).Print(playerFromModel(*record))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Character name")
	cmd.Flags().IntVar(&maxHP, "max", 0, "Maximum HP")
	cmd.Flags().IntVar(&currentHP, "current", 0, "Current HP")

	return cmd
}

// newAdjustCmd builds heal (sign 1) and damage (sign -1)
func newAdjustCmd(use string, sign int) *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   use + " <amount>",
		Short: fmt.Sprintf("%s your character, or another player's as the DM", capitalize(use)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil || amount < 0 {
				return fmt.Errorf("amount must be a non-negative whole number, got %q", args[0])
			}

			id, err := controller.Identity(keys)
			if err != nil {
				return err
			}

			var record *model.PlayerRecord
			if player != "" {
				target, err := model.ParsePlayerName(player)
				if err != nil {
					return err
				}
				record, err = controller.AdjustPlayer(cmd.Context(), id, target, sign*amount)
				if err != nil {
					return err
				}
			} else {
				record, err = controller.AdjustSelf(cmd.Context(), id, sign*amount)
				if err != nil {
					return err
				}
			}

			output(cmd).Print(playerFromModel(*record))
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player to adjust (DM only)")

	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
