package sshd

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/transport/pipetest"
)

func testHostKey(t *testing.T) ssh.Signer {
	t.Helper()
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		t.Fatalf("hostkey.GenerateRandom: %v", err)
	}
	return kp.Signer
}

// newTestServer wires a Server to an in-memory pipetest.Listener and
// starts Serve in the background, returning a dial func and a stop
// func.
func newTestServer(t *testing.T, build func(*Server) *Server) (dial func() (net.Conn, error), stop func()) {
	t.Helper()

	lis := pipetest.NewListener()
	srv := New().HostKey(testHostKey(t)).Listener(lis)
	srv = build(srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	return lis.Dial, func() {
		cancel()
		lis.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("server did not shut down in time")
		}
	}
}

func dialSSH(t *testing.T, dial func() (net.Conn, error), user string, authMethods ...ssh.AuthMethod) *ssh.Client {
	t.Helper()
	conn, err := dial()
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         2 * time.Second,
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, "pipe", clientConfig)
	if err != nil {
		t.Fatalf("NewClientConn: %v", err)
	}
	return ssh.NewClient(c, chans, reqs)
}

func TestServeShellSession(t *testing.T) {
	handler := func(session *core.Session) (*core.Session, error) {
		if err := session.WriteString("hello from shell\n"); err != nil {
			return session, err
		}
		return session.Exit(0)
	}

	dial, stop := newTestServer(t, func(s *Server) *Server {
		return s.App(handler)
	})
	defer stop()

	client := dialSSH(t, dial, "anyone")
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	stdout, err := session.StdoutPipe()
	if err != nil {
		t.Fatalf("StdoutPipe: %v", err)
	}
	if err := session.Shell(); err != nil {
		t.Fatalf("Shell: %v", err)
	}
	out, err := io.ReadAll(stdout)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("read stdout: %v", err)
	}
	if err := session.Wait(); err != nil {
		if _, ok := err.(*ssh.ExitMissingError); !ok {
			t.Fatalf("Wait: %v", err)
		}
	}
	if string(out) != "hello from shell\n" {
		t.Fatalf("got %q, want %q", out, "hello from shell\n")
	}
}

func TestServeExecSession(t *testing.T) {
	var gotCommand string
	handler := func(session *core.Session) (*core.Session, error) {
		cmd, _ := session.Command()
		gotCommand = cmd
		if err := session.WriteString("ran: " + cmd + "\n"); err != nil {
			return session, err
		}
		return session.Exit(0)
	}

	dial, stop := newTestServer(t, func(s *Server) *Server {
		return s.App(handler)
	})
	defer stop()

	client := dialSSH(t, dial, "anyone")
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	out, err := session.Output("whoami")
	if err != nil {
		if _, ok := err.(*ssh.ExitMissingError); !ok {
			t.Fatalf("Output: %v", err)
		}
	}

	if gotCommand != "whoami" {
		t.Fatalf("handler saw command %q, want %q", gotCommand, "whoami")
	}
	if string(out) != "ran: whoami\n" {
		t.Fatalf("got %q", out)
	}
}

func TestServePasswordAuth(t *testing.T) {
	handler := func(session *core.Session) (*core.Session, error) {
		return session.Exit(0)
	}

	dial, stop := newTestServer(t, func(s *Server) *Server {
		return s.PasswordAuth(func(user, password string) bool {
			return user == "alice" && password == "secret"
		}).App(handler)
	})
	defer stop()

	// Correct credentials succeed.
	client := dialSSH(t, dial, "alice", ssh.Password("secret"))
	client.Close()

	// Wrong credentials fail the handshake.
	conn, err := dial()
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_, _, _, err = ssh.NewClientConn(conn, "pipe", &ssh.ClientConfig{
		User:            "alice",
		Auth:            []ssh.AuthMethod{ssh.Password("wrong")},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         2 * time.Second,
	})
	if err == nil {
		t.Fatalf("expected auth failure with wrong password")
	}
}

func TestExecPtyKeepsCommand(t *testing.T) {
	var gotKind core.SessionKindTag
	var gotCommand, gotTerm string
	done := make(chan struct{})

	handler := func(session *core.Session) (*core.Session, error) {
		defer close(done)
		kind := session.Kind()
		gotKind = kind.Tag
		gotCommand = kind.Command
		gotTerm = kind.Term
		return session.Exit(0)
	}

	dial, stop := newTestServer(t, func(s *Server) *Server {
		return s.App(handler)
	})
	defer stop()

	client := dialSSH(t, dial, "anyone")
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	if err := session.RequestPty("xterm", 24, 80, ssh.TerminalModes{}); err != nil {
		t.Fatalf("RequestPty: %v", err)
	}
	if err := session.Start("uptime"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler was not invoked")
	}

	if gotKind != core.KindExecPty {
		t.Fatalf("got kind %v, want KindExecPty", gotKind)
	}
	if gotCommand != "uptime" {
		t.Fatalf("got command %q, want %q", gotCommand, "uptime")
	}
	if gotTerm != "xterm" {
		t.Fatalf("got term %q, want %q", gotTerm, "xterm")
	}
}
