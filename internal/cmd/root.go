package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shenron-go/shenron/internal/config"
)

// defaultVersion is the version NewRootCommand shows when its caller
// passes an empty version string; cmd/shenron normally passes its own
// build-time version instead.
const defaultVersion = "devel"

// NewRootCommand builds the shenron root Cobra command and attaches
// the "serve" subcommand, the way the teacher's newCmd attaches
// "server" and "agent" to the otterscale root command.
func NewRootCommand(version string, conf *config.Config, newServe ServeInjector) (*cobra.Command, error) {
	if version == "" {
		version = defaultVersion
	}

	root := &cobra.Command{
		Use:           "shenron",
		Short:         "shenron: an embeddable SSH session-runtime server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd, err := NewServeCommand(conf, newServe)
	if err != nil {
		return nil, err
	}

	root.AddCommand(serveCmd)

	return root, nil
}
