package cmd

import "github.com/google/wire"

// ProviderSet is the Wire provider set for the CLI layer: the root
// command, the serve subcommand, the Serve bundle it lazily builds,
// and the host key selection logic feeding it.
var ProviderSet = wire.NewSet(
	NewRootCommand,
	NewServeCommand,
	NewServe,
	ProvideHostKey,
)
