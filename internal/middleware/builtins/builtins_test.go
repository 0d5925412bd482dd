package builtins

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/shenron-go/shenron/internal/core"
)

func noopHandler(session *core.Session) (*core.Session, error) {
	return session, nil
}

func TestAccessControlRejectsDisallowedCommand(t *testing.T) {
	ac := NewAccessControl("whoami", "date")

	kind := core.Exec("rm -rf /")
	fakeAddr := &net.TCPAddr{IP: net.ParseIP("203.0.113.1"), Port: 4242}
	session := core.NewSession(discardChannel{}, nil, kind, "mallory", nil, fakeAddr)

	called := false
	next := core.NewNext(func(s *core.Session) (*core.Session, error) {
		called = true
		return s, nil
	})

	result, err := ac.Middleware(session, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("handler should not run for a disallowed command")
	}
	code, ok := result.ExitCode()
	if !ok || code != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", code, ok)
	}
}

func TestAccessControlAllowsListedCommand(t *testing.T) {
	ac := NewAccessControl("whoami")
	kind := core.Exec("whoami")
	fakeAddr := &net.TCPAddr{IP: net.ParseIP("203.0.113.1"), Port: 4242}
	session := core.NewSession(discardChannel{}, nil, kind, "alice", nil, fakeAddr)

	next := core.NewNext(noopHandler)
	if _, err := ac.Middleware(session, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccessControlPassesNonExecSessions(t *testing.T) {
	ac := NewAccessControl("whoami")
	fakeAddr := &net.TCPAddr{IP: net.ParseIP("203.0.113.1"), Port: 4242}
	session := core.NewSession(discardChannel{}, nil, core.Shell(), "alice", nil, fakeAddr)

	called := false
	next := core.NewNext(func(s *core.Session) (*core.Session, error) {
		called = true
		return s, nil
	})
	if _, err := ac.Middleware(session, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("shell session with no command should pass through")
	}
}

func TestRateLimiterAllowsThenBlocks(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	addr := &net.TCPAddr{IP: net.ParseIP("198.51.100.7"), Port: 1}

	session := core.NewSession(discardChannel{}, nil, core.Shell(), "bob", nil, addr)
	called := 0
	next := core.NewNext(func(s *core.Session) (*core.Session, error) {
		called++
		return s, nil
	})

	if _, err := rl.Middleware(session, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected first session to pass, called=%d", called)
	}

	session2 := core.NewSession(discardChannel{}, nil, core.Shell(), "bob", nil, addr)
	result, err := rl.Middleware(session2, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected second session from same IP to be blocked, called=%d", called)
	}
	if code, ok := result.ExitCode(); !ok || code != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", code, ok)
	}
}

// discardChannel is a minimal ssh.Channel stub sufficient for tests
// that only exercise middleware logic, not I/O.
type discardChannel struct{}

func (discardChannel) Read(p []byte) (int, error)  { return 0, io.EOF }
func (discardChannel) Write(p []byte) (int, error) { return len(p), nil }
func (discardChannel) Close() error                { return nil }
func (discardChannel) CloseWrite() error           { return nil }
func (discardChannel) SendRequest(name string, wantReply bool, payload []byte) (bool, error) {
	return true, nil
}
func (discardChannel) Stderr() io.ReadWriter { return discardRW{} }

type discardRW struct{}

func (discardRW) Read(p []byte) (int, error)  { return 0, io.EOF }
func (discardRW) Write(p []byte) (int, error) { return len(p), nil }
