package main

import (
	"github.com/shenron-go/shenron/internal/cmd"
	"github.com/shenron-go/shenron/internal/config"
)

// provideVersion exposes the build-time version string to the Wire
// graph so internal/cmd.NewRootCommand can set it on the root
// command without internal/cmd importing package main.
func provideVersion() string {
	return version
}

// provideServeInjector closes over conf and defers to wireServe,
// giving internal/cmd.NewServeCommand a ServeInjector that only pays
// for host-key loading/generation when "serve" actually runs.
func provideServeInjector(conf *config.Config) cmd.ServeInjector {
	return func() (*cmd.Serve, func(), error) {
		return wireServe(conf)
	}
}
