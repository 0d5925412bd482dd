// Package cmd defines the "serve" Cobra subcommand for cmd/shenron:
// the packaged reference server that boots internal/sshd.Server (and,
// optionally, internal/metrics) from internal/config, the way the
// teacher's internal/cmd/server.go boots its HTTP and tunnel listeners
// from the same configuration layer.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shenron-go/shenron/internal/config"
	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/metrics"
	"github.com/shenron-go/shenron/internal/middleware/builtins"
	"github.com/shenron-go/shenron/internal/sshd"
	"github.com/shenron-go/shenron/internal/transport"
)

// ServeInjector builds a Serve along with its cleanup func, deferred
// until the "serve" subcommand actually runs rather than at root
// command construction time — the same laziness the teacher's
// ServerInjector/AgentInjector closures give cmd/otterscale.
type ServeInjector func() (*Serve, func(), error)

// NewServeCommand builds the "serve" subcommand. Flags are bound
// eagerly (so --help reflects them); the Serve itself is constructed
// lazily via newServe only when RunE fires.
func NewServeCommand(conf *config.Config, newServe ServeInjector) (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     "serve",
		Short:   "Run the shenron SSH session-runtime reference server",
		Example: "shenron serve --address=:2222 --host-key-path=/etc/shenron/host_key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cleanup, err := newServe()
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}
			defer cleanup()

			return s.Run(cmd.Context())
		},
	}

	if err := conf.BindFlags(command.Flags(), config.ServerOptions); err != nil {
		return nil, err
	}
	if err := conf.BindFlags(command.Flags(), config.MetricsOptions); err != nil {
		return nil, err
	}

	return command, nil
}

// Serve bundles the sshd server with the configuration and host key
// material it needs to run, mirroring the teacher's cmd/server.Server
// bundling an HTTP and tunnel listener behind one Run method.
type Serve struct {
	conf    *config.Config
	hostKey *hostkey.KeyPair
}

// NewServe wires conf and hostKey into a Serve. It is a Wire provider
// (see wire.go); the heavier sshd.Server and optional metrics.Server
// are built lazily inside Run, matching how the teacher's
// cmd/server.Server.Run constructs httpSrv/tunnelSrv itself rather
// than threading them through the DI graph.
func NewServe(conf *config.Config, hostKey *hostkey.KeyPair) *Serve {
	return &Serve{conf: conf, hostKey: hostKey}
}

// Run builds the SSH server (and, if enabled, the metrics listener)
// from configuration and runs them until ctx is cancelled.
func (s *Serve) Run(ctx context.Context) error {
	srv := sshd.New().
		Bind(s.conf.ServerAddress()).
		HostKey(s.hostKey.Signer).
		AuthTimeout(s.conf.ServerAuthTimeout()).
		InactivityTimeout(s.conf.ServerInactivityTimeout()).
		KeepaliveInterval(s.conf.ServerKeepaliveInterval()).
		KeepaliveMax(s.conf.ServerKeepaliveMax()).
		With(builtins.Logging).
		With(builtins.Elapsed)

	if bannerPath := s.conf.ServerBannerPath(); bannerPath != "" {
		var err error
		srv, err = srv.BannerFile(bannerPath)
		if err != nil {
			return err
		}
	}

	if !s.conf.ServerAllowAnonymous() {
		// The reference binary ships no user database, so the only
		// safe default is to refuse to start rather than silently
		// accept every connection. Operators wiring a real identity
		// backend should fork Run and call PasswordAuth/PubkeyAuth
		// before App, per §9's note that anonymous mode must be an
		// explicit operator choice.
		return fmt.Errorf("shenron: refusing to start with no password or public key verifier configured; " +
			"pass --allow-anonymous to accept every connection, or configure an auth backend")
	}

	var listeners []transport.Listener

	if s.conf.MetricsEnabled() {
		metricsSrv, err := metrics.New(s.conf.MetricsAddress(), srv.ActiveConnections)
		if err != nil {
			return fmt.Errorf("shenron: start metrics listener: %w", err)
		}
		srv = srv.AuthRecorder(metricsSrv)
		listeners = append(listeners, metricsSrv)
	}

	srv = srv.App(echoHandler)
	listeners = append(listeners, srv)

	return transport.Serve(ctx, listeners...)
}

// echoHandler is the reference server's default application: it
// echoes whatever the client sends until end-of-input, the simplest
// handler that exercises the full Session contract. Operators embed
// their own Handler via sshd.Server.App instead of running this
// binary as anything but a demonstration.
func echoHandler(session *core.Session) (*core.Session, error) {
	if err := session.WriteString("Welcome to shenron.\r\n"); err != nil {
		return session, err
	}

	for {
		data, ok := session.Input()
		if !ok {
			return session.Exit(0)
		}
		if err := session.Write(data); err != nil {
			return session, err
		}
	}
}
