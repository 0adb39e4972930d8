package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "watch <prompt-id>",
		Short: "Print a prompt's reaction state whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := entity.ParseReactionKind(kind)
			if err != nil {
				return err
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			states, err := client.Subscribe(ctx, args[0], k)
			if err != nil {
				return err
			}
			for s := range states {
				printState(s)
			}
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("subscription ended by the server")
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(entity.ReactionLike), "reaction kind (like or bookmark)")
	return cmd
}
