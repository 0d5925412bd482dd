// Package sshd implements the SSH session-runtime server: the
// functional-options Server builder (C5), the per-channel state
// machine (C3, in conn.go), and the transport-level policies
// (auth timeout, inactivity timeout, keepalive) that
// golang.org/x/crypto/ssh leaves to the caller. It is the Go
// analogue of the original crate's src/server/{core,russh}.rs.
package sshd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/middleware"
)

// AuthRecorder receives the outcome of every password/public-key
// attempt. It is a consumer-defined interface sized to exactly what
// Server needs, so wiring in internal/metrics.Server (which satisfies
// it) never requires this package to import metrics.
type AuthRecorder interface {
	RecordAuthAttempt(ok bool)
}

// Server builds and runs an SSH session-runtime server using
// functional options, the way the teacher's transport/http.Server and
// transport/tunnel.Server are built. A Server is only usable once:
// construct, configure, call App once, then Serve.
type Server struct {
	addr     string
	listener net.Listener // set directly by tests to bypass TCP binding
	hostKeys []ssh.Signer

	chain        core.Handler
	stack        []core.Middleware
	auth         core.AuthConfig
	authRecorder AuthRecorder

	shutdownSignal <-chan struct{}
	authTimeout    time.Duration
	inactivityTO   time.Duration
	banner         string

	keepaliveInterval time.Duration
	keepaliveMax      int

	mu    sync.Mutex
	conns map[*ssh.ServerConn]struct{}
}

// New returns a Server with no host key, bind address, or app handler
// configured yet; callers must set at least HostKey (or HostKeyFile),
// Bind (or Listener), and App before calling Serve.
func New() *Server {
	return &Server{
		conns: make(map[*ssh.ServerConn]struct{}),
	}
}

// Bind sets the TCP address to listen on.
func (s *Server) Bind(addr string) *Server {
	s.addr = addr
	return s
}

// Listener sets a pre-built net.Listener directly, bypassing Bind.
// Intended for tests that drive the server over an in-memory listener
// such as internal/transport/pipetest, matching the teacher's
// transport/pipe.Listener's stated purpose of giving a server "no TCP
// presence".
func (s *Server) Listener(l net.Listener) *Server {
	s.listener = l
	return s
}

// HostKey adds a host key the server will offer during key exchange.
// Multiple host keys of different algorithms may be added; clients
// negotiate whichever they support.
func (s *Server) HostKey(signer ssh.Signer) *Server {
	s.hostKeys = append(s.hostKeys, signer)
	return s
}

// HostKeyFile loads a host key from path and adds it via HostKey.
func (s *Server) HostKeyFile(path string) (*Server, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return s, core.WrapError(core.CodeIO, "read host key file", err)
	}
	signer, err := hostkey.Load(pemBytes)
	if err != nil {
		return s, core.WrapError(core.CodeKeyMaterial, "load host key file", err)
	}
	return s.HostKey(signer), nil
}

// Banner sets the authentication banner shown to clients before
// authentication.
func (s *Server) Banner(banner string) *Server {
	s.banner = banner
	return s
}

// BannerFile loads the authentication banner from a file.
func (s *Server) BannerFile(path string) (*Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return s, core.WrapError(core.CodeIO, "read banner file", err)
	}
	return s.Banner(string(data)), nil
}

// KeepaliveInterval sets how often the server pings idle connections
// with a keepalive@openssh.com global request.
func (s *Server) KeepaliveInterval(d time.Duration) *Server {
	s.keepaliveInterval = d
	return s
}

// KeepaliveMax sets how many consecutive unanswered keepalives are
// tolerated before the connection is closed.
func (s *Server) KeepaliveMax(n int) *Server {
	s.keepaliveMax = n
	return s
}

// With adds a middleware to the chain. Middleware run outside-in: the
// first one added is the outermost, seeing the session first on the
// way in and last on the way out.
func (s *Server) With(mw core.Middleware) *Server {
	s.stack = append(s.stack, mw)
	return s
}

// PasswordAuth sets the password authentication verifier.
func (s *Server) PasswordAuth(verify core.PasswordVerifier) *Server {
	s.auth.Password = verify
	return s
}

// PubkeyAuth sets the public key authentication verifier.
func (s *Server) PubkeyAuth(verify core.PubkeyVerifier) *Server {
	s.auth.Pubkey = verify
	return s
}

// AuthRecorder registers an observer notified of every password/
// public-key attempt's outcome, wired into the PasswordCallback and
// PublicKeyCallback built by config. Must be set before Serve runs;
// internal/metrics.Server is the reference implementation.
func (s *Server) AuthRecorder(r AuthRecorder) *Server {
	s.authRecorder = r
	return s
}

// AuthTimeout bounds how long the key exchange and authentication
// phase of a new connection may take before it is dropped.
func (s *Server) AuthTimeout(d time.Duration) *Server {
	s.authTimeout = d
	return s
}

// InactivityTimeout closes a connection that has sent or received no
// data for the given duration.
func (s *Server) InactivityTimeout(d time.Duration) *Server {
	s.inactivityTO = d
	return s
}

// App sets the application handler and freezes the middleware stack
// registered so far into a single chain, the way Server::app builds
// the erased handler chain in the original crate.
func (s *Server) App(handler core.Handler) *Server {
	s.chain = middleware.Build(handler, s.stack)
	return s
}

// ShutdownSignal registers a channel that, when closed, causes Serve
// to stop accepting new connections. In-flight sessions are left to
// finish on their own; Serve only stops the accept loop.
func (s *Server) ShutdownSignal(sig <-chan struct{}) *Server {
	s.shutdownSignal = sig
	return s
}

// Serve starts the server and blocks until ctx is cancelled, the
// shutdown signal (if any) fires, or the listener fails. Like the
// original crate's Server::serve, a graceful shutdown signal only
// stops new connections from being accepted; sessions already in
// flight run to completion.
func (s *Server) Serve(ctx context.Context) error {
	if s.chain == nil {
		return core.ErrNoHandler
	}
	if len(s.hostKeys) == 0 {
		return core.ErrNoHostKeys
	}

	listener := s.listener
	if listener == nil {
		if s.addr == "" {
			return core.ErrNoBindAddress
		}
		l, err := net.Listen("tcp", s.addr)
		if err != nil {
			return core.WrapError(core.CodeTransport, "listen", err)
		}
		listener = l
	}
	defer listener.Close()

	config := s.config()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(listener, config)
	}()

	select {
	case err := <-acceptErr:
		return err
	case <-ctx.Done():
		_ = listener.Close()
		<-acceptErr
		return nil
	case <-s.shutdownSignal:
		_ = listener.Close()
		<-acceptErr
		return nil
	}
}

// Start adapts Serve to internal/transport.Listener, so a Server can
// be composed with other transport.Listener components (such as an
// internal/metrics admin listener) under a single transport.Serve
// call in cmd/shenron.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx)
}

// Stop closes a listener set via Listener, unblocking Start's accept
// loop. It satisfies internal/transport.Listener. A listener that
// Serve opened itself from Bind is not reachable from Stop; Serve
// closes that one when its ctx is cancelled.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		return listener.Close()
	}
	return nil
}

func (s *Server) acceptLoop(listener net.Listener, config *ssh.ServerConfig) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return core.WrapError(core.CodeTransport, "accept", err)
		}

		go s.handleNetConn(conn, config)
	}
}

func (s *Server) handleNetConn(conn net.Conn, config *ssh.ServerConfig) {
	if s.inactivityTO > 0 {
		conn = newIdleConn(conn, s.inactivityTO)
	}
	var authTimer *time.Timer
	if s.authTimeout > 0 {
		authTimer = time.AfterFunc(s.authTimeout, func() { _ = conn.Close() })
	}

	sconn, chans, globalReqs, err := ssh.NewServerConn(conn, config)
	if authTimer != nil {
		authTimer.Stop()
	}
	if err != nil {
		_ = conn.Close()
		return
	}

	s.trackConn(sconn)
	defer s.untrackConn(sconn)

	if s.keepaliveInterval > 0 {
		stopKeepalive := make(chan struct{})
		go keepaliveLoop(sconn, s.keepaliveInterval, s.keepaliveMax, stopKeepalive)
		defer close(stopKeepalive)
	}

	handleConn(sconn, chans, globalReqs, s.chain)
	_ = sconn.Wait()
}

// ActiveConnections reports how many SSH connections are currently
// established, for internal/metrics to expose as a gauge.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) trackConn(c *ssh.ServerConn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(c *ssh.ServerConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) config() *ssh.ServerConfig {
	config := &ssh.ServerConfig{}

	if s.auth.IsEmpty() {
		config.NoClientAuth = true
	} else {
		recorder := s.authRecorder

		if s.auth.Password != nil {
			verify := s.auth.Password
			config.PasswordCallback = func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
				ok := verify(conn.User(), string(password))
				if recorder != nil {
					recorder.RecordAuthAttempt(ok)
				}
				if ok {
					return nil, nil
				}
				return nil, fmt.Errorf("sshd: password rejected for %q", conn.User())
			}
		}
		if s.auth.Pubkey != nil {
			verify := s.auth.Pubkey
			config.PublicKeyCallback = func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
				ok := verify(conn.User(), key)
				if recorder != nil {
					recorder.RecordAuthAttempt(ok)
				}
				if ok {
					return nil, nil
				}
				return nil, fmt.Errorf("sshd: public key rejected for %q", conn.User())
			}
		}
	}

	if s.banner != "" {
		banner := s.banner
		config.BannerCallback = func(conn ssh.ConnMetadata) string {
			return banner
		}
	}

	for _, key := range s.hostKeys {
		config.AddHostKey(key)
	}

	return config
}

// idleConn resets a deadline on every successful Read/Write, giving a
// connection an inactivity timeout instead of an absolute one.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func newIdleConn(c net.Conn, timeout time.Duration) *idleConn {
	ic := &idleConn{Conn: c, timeout: timeout}
	_ = ic.Conn.SetDeadline(time.Now().Add(timeout))
	return ic
}

func (c *idleConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if err == nil {
		_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	}
	return n, err
}

func (c *idleConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if err == nil {
		_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	}
	return n, err
}

// keepaliveLoop periodically sends a keepalive@openssh.com global
// request and closes the connection after max consecutive requests go
// unanswered (or error), the Go analogue of russh's config-driven
// keepalive_interval/keepalive_max.
func keepaliveLoop(sconn *ssh.ServerConn, interval time.Duration, max int, stop <-chan struct{}) {
	if max <= 0 {
		max = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	misses := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			replied := make(chan error, 1)
			go func() {
				// A failure reply still proves the peer is alive.
				_, _, err := sconn.SendRequest("keepalive@openssh.com", true, nil)
				replied <- err
			}()
			var err error
			select {
			case err = <-replied:
			case <-time.After(interval):
				err = errors.New("keepalive reply timed out")
			case <-stop:
				return
			}
			if err != nil {
				misses++
				if misses >= max {
					_ = sconn.Close()
					return
				}
				continue
			}
			misses = 0
		}
	}
}
