package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/PromptShelf/internal/client/reaction"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
)

// cliGate treats the presence of a token as being signed in.
type cliGate struct {
	token string
}

func (g cliGate) CallerIdentity() (string, bool) { return g.token, g.token != "" }

func (cliGate) ReportError(f failure.Failure, ec reaction.ErrorContext) {
	fmt.Fprintf(os.Stderr, "%s on prompt %s failed: %v\n", ec.Action, ec.PromptID, f)
}

func (cliGate) RequireSignIn() {
	fmt.Fprintln(os.Stderr, "sign in required: pass --token or set PROMPTSHELF_TOKEN")
}

type stdoutNotifier struct{}

func (stdoutNotifier) Notify(message string) { fmt.Println(message) }

func toggleCmd(flags *globalFlags, kind string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   kind + " <prompt-id>",
		Short: fmt.Sprintf("Toggle your %s on a prompt", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd.Context(), flags, args[0], entity.ReactionKind(kind), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", reaction.DefaultToggleTimeout, "toggle timeout")
	return cmd
}

func runToggle(ctx context.Context, flags *globalFlags, promptID string, kind entity.ReactionKind, timeout time.Duration) error {
	client, err := flags.client()
	if err != nil {
		return err
	}
	gate := cliGate{token: flags.token}
	if _, ok := gate.CallerIdentity(); !ok {
		gate.RequireSignIn()
		return errors.New("not signed in")
	}

	// seed the controller with the current state so the printed view is exact
	current, err := client.State(ctx, promptID, kind)
	if err != nil {
		return err
	}
	ctrl, err := reaction.New(reaction.Config{PromptID: promptID, Kind: kind, InitialCount: current.Count}, client, gate,
		reaction.WithNotifier(stdoutNotifier{}), reaction.WithToggleTimeout(timeout))
	if err != nil {
		return err
	}
	defer ctrl.Close()
	ctrl.Apply(current)

	ctrl.Click(nil)
	if err := ctrl.Wait(ctx); err != nil {
		return err
	}
	view := ctrl.View()
	if rb, ok := view.Phase.(reaction.RolledBack); ok {
		return rb.Failure
	}
	printState(entity.MembershipState{PromptID: promptID, Kind: kind, Active: view.Active, Count: view.Count})
	return nil
}

func stateCmd(flags *globalFlags) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "state <prompt-id>",
		Short: "Show a prompt's counter and whether you hold the reaction",
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
			state, err := client.State(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			printState(state)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(entity.ReactionLike), "reaction kind (like or bookmark)")
	return cmd
}

func syncCmd(flags *globalFlags) *cobra.Command {
	var req dto.SyncUserRequest

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or refresh your user record on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}
			user, err := client.Sync(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("synced as %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "username to register (defaults to the token's)")
	return cmd
}

func printState(s entity.MembershipState) {
	mark := " "
	if s.Active {
		mark = "*"
	}
	fmt.Printf("[%s] %s %s: %d\n", mark, s.PromptID, s.Kind, s.Count)
}
