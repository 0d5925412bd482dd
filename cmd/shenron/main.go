// Command shenron is the packaged reference binary for the session-
// runtime framework: a single "serve" subcommand that boots
// internal/sshd.Server from internal/config, the way cmd/otterscale
// wires its server/agent subcommands. Applications embedding the
// framework as a library use internal/sshd.Server directly instead of
// this binary; see cmd/examples for worked Handler/Middleware usage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is injected at build time via -ldflags
// (e.g. -ldflags "-X main.version=v1.2.3").
var version = "devel"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Cobra is configured with SilenceErrors: true, so we print
		// the error here for consistent formatting.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the root command via Wire and executes it.
func run(ctx context.Context) error {
	rootCmd, cleanup, err := wireRootCmd()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	return rootCmd.ExecuteContext(ctx)
}
