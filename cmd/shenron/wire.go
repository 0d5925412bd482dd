//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/spf13/cobra"

	"github.com/shenron-go/shenron/internal/cmd"
	"github.com/shenron-go/shenron/internal/config"
)

// wireRootCmd assembles the root Cobra command. The "serve"
// subcommand it registers defers the expensive part of the graph
// (host key material, the sshd server itself) to wireServe, invoked
// lazily only when "shenron serve" actually runs.
func wireRootCmd() (*cobra.Command, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		cmd.ProviderSet,
		provideVersion,
		provideServeInjector,
	))
}

// wireServe assembles a *cmd.Serve from configuration: the host key
// (derived from a seed or loaded/generated from a path) plus conf
// itself.
func wireServe(conf *config.Config) (*cmd.Serve, func(), error) {
	panic(wire.Build(
		cmd.ProviderSet,
	))
}
