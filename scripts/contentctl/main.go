// contentctl runs the content maintenance operations from a shell, either
// directly against the configured database or through a running API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	api    string
	output string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "contentctl",
		Short:         "Seed, clear and audit RiderMind content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.api, "api", "", "Base URL of a running API (default: use the database from the environment)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")

	cmd.AddCommand(
		newSeedCmd(&opts, false),
		newSeedCmd(&opts, true),
		newClearCmd(&opts),
		newCheckCmd(&opts),
		newRunsCmd(&opts),
	)
	return cmd
}
