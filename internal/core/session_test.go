package core

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

// fakeChannel is a minimal in-memory ssh.Channel for exercising
// Session without a real transport, backed by io.Pipe for the data
// stream and a buffer for whatever gets sent via SendRequest.
type fakeChannel struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu       sync.Mutex
	stderr   bytes.Buffer
	sent     []fakeRequest
	closed   bool
	closeErr error
}

type fakeRequest struct {
	name    string
	payload []byte
}

func newFakeChannel() (*fakeChannel, *io.PipeWriter) {
	r, w := io.Pipe()
	return &fakeChannel{r: r}, w
}

func (c *fakeChannel) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *fakeChannel) Write(p []byte) (int, error) { return len(p), nil }
func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.r.Close()
}
func (c *fakeChannel) CloseWrite() error { return nil }
func (c *fakeChannel) SendRequest(name string, wantReply bool, payload []byte) (bool, error) {
	c.mu.Lock()
	c.sent = append(c.sent, fakeRequest{name: name, payload: payload})
	c.mu.Unlock()
	return true, nil
}
func (c *fakeChannel) Stderr() io.ReadWriter { return stderrRW{&c.stderr} }

type stderrRW struct{ buf *bytes.Buffer }

func (s stderrRW) Read(p []byte) (int, error)  { return s.buf.Read(p) }
func (s stderrRW) Write(p []byte) (int, error) { return s.buf.Write(p) }

var _ ssh.Channel = (*fakeChannel)(nil)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "203.0.113.1:4242" }

func TestSessionInputAndEOF(t *testing.T) {
	ch, pw := newFakeChannel()
	s := NewSession(ch, nil, Shell(), "alice", map[string]string{}, fakeAddr{})

	go func() {
		_, _ = pw.Write([]byte("hello"))
		pw.Close()
	}()

	data, ok := s.Input()
	if !ok {
		t.Fatalf("expected an Input event before EOF")
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}

	if _, ok := s.Input(); ok {
		t.Fatalf("expected Input to return false after EOF")
	}
}

func TestSessionResizeEvent(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()

	requests := make(chan *ssh.Request, 1)
	s := NewSession(ch, requests, Pty("xterm", PtySize{Width: 80, Height: 24}), "bob", nil, fakeAddr{})
	s.startPump()

	requests <- &ssh.Request{
		Type:    "window-change",
		Payload: ssh.Marshal(windowChangePayload{Width: 120, Height: 40}),
	}

	select {
	case event := <-eventsOf(s):
		if event.Tag != EventResize {
			t.Fatalf("got tag %v, want EventResize", event.Tag)
		}
		if event.Resize.Width != 120 || event.Resize.Height != 40 {
			t.Fatalf("got size %+v, want 120x40", event.Resize)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for resize event")
	}
}

// eventsOf exposes the session's internal event channel for tests in
// the same package.
func eventsOf(s *Session) chan Event {
	return s.events
}

func TestSessionExitThenClose(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()

	s := NewSession(ch, nil, Exec("whoami"), "carol", nil, fakeAddr{})

	s, err := s.Exit(0)
	if err != nil {
		t.Fatalf("Exit returned error: %v", err)
	}
	if code, ok := s.ExitCode(); !ok || code != 0 {
		t.Fatalf("got (%d, %v), want (0, true)", code, ok)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if len(ch.sent) != 1 || ch.sent[0].name != "exit-status" {
		t.Fatalf("expected exactly one exit-status request, got %+v", ch.sent)
	}
}

func TestSessionIntoChannel(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()

	s := NewSession(ch, nil, SubsystemKind("echo"), "dave", nil, fakeAddr{})

	taken, err := s.IntoChannel()
	if err != nil {
		t.Fatalf("IntoChannel returned error: %v", err)
	}
	if taken != ch {
		t.Fatalf("IntoChannel did not return the underlying channel")
	}

	if _, err := s.IntoChannel(); err == nil {
		t.Fatalf("expected second IntoChannel call to fail")
	}
}

func TestSessionCommandAndSubsystemAccessors(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()

	execPty := NewSession(ch, nil, ExecPty("uptime", "xterm", PtySize{Width: 80, Height: 24}), "eve", nil, fakeAddr{})
	cmd, ok := execPty.Command()
	if !ok || cmd != "uptime" {
		t.Fatalf("got (%q, %v), want (uptime, true)", cmd, ok)
	}
	term, ok := execPty.Term()
	if !ok || term != "xterm" {
		t.Fatalf("got (%q, %v), want (xterm, true)", term, ok)
	}

	sub := NewSession(ch, nil, SubsystemKind("sftp"), "eve", nil, fakeAddr{})
	name, ok := sub.Subsystem()
	if !ok || name != "sftp" {
		t.Fatalf("got (%q, %v), want (sftp, true)", name, ok)
	}
	if _, ok := sub.Command(); ok {
		t.Fatalf("subsystem session should not report a command")
	}
}
