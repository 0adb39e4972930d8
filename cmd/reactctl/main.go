package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/PromptShelf/internal/client/api"
)

type globalFlags struct {
	server string
	token  string
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "reactctl",
		Short: "Like, bookmark and watch PromptShelf prompts",
		Long: `reactctl talks to a PromptShelf server.

The server address and access token default to PROMPTSHELF_SERVER and
PROMPTSHELF_TOKEN.

Examples:
  reactctl like 7f1c2e
  reactctl state 7f1c2e --kind bookmark
  reactctl watch 7f1c2e`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.server, "server", envOr("PROMPTSHELF_SERVER", "http://localhost:8080"), "PromptShelf server URL")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("PROMPTSHELF_TOKEN"), "bearer access token")

	rootCmd.AddCommand(
		toggleCmd(flags, "like"),
		toggleCmd(flags, "bookmark"),
		stateCmd(flags),
		watchCmd(flags),
		syncCmd(flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func (f *globalFlags) client() (*api.Client, error) {
	return api.New(f.server, api.StaticToken(f.token), api.WithLogger(stderrLogger{}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type stderrLogger struct{}

func (stderrLogger) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
