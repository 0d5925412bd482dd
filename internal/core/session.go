package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// windowChangePayload mirrors RFC 4254 §6.7's window-change request
// body: the dimensions of a pty after a client-side resize.
type windowChangePayload struct {
	Width       uint32
	Height      uint32
	PixelWidth  uint32
	PixelHeight uint32
}

// signalPayload mirrors RFC 4254 §6.9's signal request body.
type signalPayload struct {
	Name string
}

// exitStatusPayload mirrors RFC 4254 §6.10's exit-status request
// body, sent by the server when a session's handler concludes.
type exitStatusPayload struct {
	Status uint32
}

// Session is the façade application handlers and middleware operate
// on: one per accepted SSH channel, carrying the channel itself, the
// parsed request that created it, the authenticated user, any
// env-request variables collected before the channel was promoted,
// and the remote address of the connection it belongs to.
//
// A Session is only valid for the goroutine its Handler runs in. It
// must not be shared across goroutines except via IntoChannel, which
// hands off raw channel ownership entirely.
type Session struct {
	id         uuid.UUID
	channel    ssh.Channel
	kind       SessionKind
	user       string
	env        map[string]string
	remoteAddr net.Addr
	exitCode   *int

	requests <-chan *ssh.Request
	events   chan Event
	pumpWG   sync.WaitGroup

	mu          sync.Mutex
	pumpStarted bool
}

// NewSession wraps an accepted channel and its out-of-band request
// stream into a Session ready to hand to a Handler. requests is the
// channel returned alongside the ssh.Channel by ssh.NewChannel.Accept
// (or, for window-change/signal, the Session-scoped requests observed
// after promotion). The background goroutines that drain it and the
// channel itself into Events are not started here — they start lazily
// on the first Next/Input call (see startPump), so a handler that
// calls IntoChannel before ever reading an event never races a pump
// goroutine over the channel.
func NewSession(channel ssh.Channel, requests <-chan *ssh.Request, kind SessionKind, user string, env map[string]string, remoteAddr net.Addr) *Session {
	return &Session{
		id:         uuid.New(),
		channel:    channel,
		kind:       kind,
		user:       user,
		env:        env,
		remoteAddr: remoteAddr,
		requests:   requests,
		events:     make(chan Event),
	}
}

// startPump starts the background goroutines that translate channel
// reads and out-of-band requests into Events, the first time a caller
// actually wants an Event. It is a no-op on every call after the
// first, and a no-op if the channel has already been handed off via
// IntoChannel (which can only happen before the first call, since both
// take s.mu).
func (s *Session) startPump() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pumpStarted || s.channel == nil {
		return
	}
	s.pumpStarted = true

	s.pumpWG.Add(2)
	go s.pumpData()
	go s.pumpRequests(s.requests)

	go func() {
		s.pumpWG.Wait()
		close(s.events)
	}()
}

// pumpData reads channel stdin and turns it into Input/EOF events.
func (s *Session) pumpData() {
	defer s.pumpWG.Done()

	buf := make([]byte, 32*1024)
	for {
		n, err := s.channel.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- Event{Tag: EventInput, Input: data}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("session channel read error", "session", s.id, "error", err)
			}
			s.events <- Event{Tag: EventEOF}
			return
		}
	}
}

// pumpRequests drains out-of-band channel requests and turns
// window-change and signal requests into Resize/Signal events. Any
// other request type is answered with a failure reply (if it wants a
// reply) and otherwise ignored, matching the original crate's "skip
// protocol messages" behavior.
func (s *Session) pumpRequests(requests <-chan *ssh.Request) {
	defer s.pumpWG.Done()

	if requests == nil {
		return
	}

	for req := range requests {
		switch req.Type {
		case "window-change":
			var payload windowChangePayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed window-change request", "session", s.id, "error", err)
				continue
			}
			size := PtySize{
				Width:       payload.Width,
				Height:      payload.Height,
				PixelWidth:  payload.PixelWidth,
				PixelHeight: payload.PixelHeight,
			}
			if s.kind.HasPty() {
				s.kind.Size = size
			}
			s.events <- Event{Tag: EventResize, Resize: size}
		case "signal":
			var payload signalPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed signal request", "session", s.id, "error", err)
				continue
			}
			s.events <- Event{Tag: EventSignal, Signal: NewSignal(payload.Name)}
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

// Next blocks until the next Event arrives, or returns false once the
// channel has been closed and no more events will arrive.
func (s *Session) Next() (Event, bool) {
	s.startPump()
	event, ok := <-s.events
	return event, ok
}

// Input blocks until the next Input event, discarding any
// Resize/Signal events seen along the way, and returns false once the
// session reaches EOF.
func (s *Session) Input() ([]byte, bool) {
	for {
		event, ok := s.Next()
		if !ok {
			return nil, false
		}
		switch event.Tag {
		case EventInput:
			return event.Input, true
		case EventEOF:
			return nil, false
		}
	}
}

// ID returns a diagnostic identifier for this session, stable for its
// lifetime, suitable for correlating log lines.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Kind returns the reason this session's handler was invoked.
func (s *Session) Kind() SessionKind {
	return s.kind
}

// Pty returns the terminal name and size if this session carries pty
// information (SessionKind Pty or ExecPty), and false otherwise.
func (s *Session) Pty() (string, PtySize, bool) {
	if !s.kind.HasPty() {
		return "", PtySize{}, false
	}
	return s.kind.Term, s.kind.Size, true
}

// Command returns the requested command for Exec and ExecPty
// sessions, and false otherwise.
func (s *Session) Command() (string, bool) {
	switch s.kind.Tag {
	case KindExec, KindExecPty:
		return s.kind.Command, true
	default:
		return "", false
	}
}

// Subsystem returns the subsystem name for Subsystem sessions, and
// false otherwise.
func (s *Session) Subsystem() (string, bool) {
	if s.kind.Tag != KindSubsystem {
		return "", false
	}
	return s.kind.Subsystem, true
}

// Term returns the pty terminal name, if any.
func (s *Session) Term() (string, bool) {
	term, _, ok := s.Pty()
	return term, ok
}

// User returns the authenticated username for this connection.
func (s *Session) User() string {
	return s.user
}

// RemoteAddr returns the remote address of the underlying connection.
func (s *Session) RemoteAddr() net.Addr {
	return s.remoteAddr
}

// Env returns the environment variables the client requested via
// env-request before the channel was promoted to this session.
func (s *Session) Env() map[string]string {
	return s.env
}

// Write writes data to the channel's primary stream.
func (s *Session) Write(data []byte) error {
	_, err := s.channel.Write(data)
	if err != nil {
		return WrapError(CodeTransport, "write to channel", err)
	}
	return nil
}

// WriteString writes str to the channel's primary stream.
func (s *Session) WriteString(str string) error {
	return s.Write([]byte(str))
}

// WriteStderr writes data to the channel's extended (stderr) stream.
func (s *Session) WriteStderr(data []byte) error {
	_, err := s.channel.Stderr().Write(data)
	if err != nil {
		return WrapError(CodeTransport, "write to channel stderr", err)
	}
	return nil
}

// WriteStderrString writes str to the channel's extended (stderr)
// stream.
func (s *Session) WriteStderrString(str string) error {
	return s.WriteStderr([]byte(str))
}

// Exit records the exit code to report to the client once the
// session's handler returns, without sending it immediately. It
// returns the session so handlers can write "return session.Exit(0)"
// as their final statement, matching the original crate's idiom.
func (s *Session) Exit(code int) (*Session, error) {
	s.exitCode = &code
	return s, nil
}

// ExitCode returns the recorded exit code, if any.
func (s *Session) ExitCode() (int, bool) {
	if s.exitCode == nil {
		return 0, false
	}
	return *s.exitCode, true
}

// WillExit reports whether Exit has already been called.
func (s *Session) WillExit() bool {
	return s.exitCode != nil
}

// IsInteractive reports whether this session should be treated as an
// interactive terminal session (Pty or Shell) rather than a one-shot
// command or subsystem.
func (s *Session) IsInteractive() bool {
	return s.kind.IsInteractive()
}

// Abort records code as the exit status and immediately sends it to
// the client, ending the channel. Unlike Exit, the effect is
// immediate: the caller must not write to the session afterward.
func (s *Session) Abort(code int) (*Session, error) {
	s.exitCode = &code
	if err := s.doExit(); err != nil {
		return s, err
	}
	return s, nil
}

// Channel returns the underlying SSH channel, for middleware that
// needs transport-level access the Session façade doesn't expose.
func (s *Session) Channel() ssh.Channel {
	return s.channel
}

// IntoChannel consumes the session, returning the underlying channel
// for direct use and marking the session as no longer usable for I/O.
// This is a deliberately narrow escape hatch: callers that take the
// channel are responsible for its lifecycle (including sending
// exit-status and closing it), and must not call any other Session
// method afterward. It exists for handlers that hand a channel off to
// a subsystem implementation with its own read/write loop.
//
// It must be called before the first Next/Input call: once the
// background pump has started reading the channel (see startPump),
// handing the same channel to a second reader would race it, so
// IntoChannel refuses instead. Calling it first, before the pump ever
// starts, guarantees the handoff happens with no concurrent reader.
func (s *Session) IntoChannel() (ssh.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel == nil {
		return nil, fmt.Errorf("session: channel already taken")
	}
	if s.pumpStarted {
		return nil, fmt.Errorf("session: channel is already being read by Next/Input; call IntoChannel before the first one")
	}

	ch := s.channel
	s.channel = nil
	close(s.events)
	return ch, nil
}

// doExit sends the recorded exit status to the client, then closes
// the channel's write side and the channel itself. It is a no-op if
// no exit code has been recorded (do_exit in the original crate) or
// if the channel has already been handed off via IntoChannel.
func (s *Session) doExit() error {
	if s.exitCode == nil || s.channel == nil {
		return nil
	}

	payload := ssh.Marshal(exitStatusPayload{Status: uint32(*s.exitCode)})
	if _, err := s.channel.SendRequest("exit-status", false, payload); err != nil {
		return WrapError(CodeTransport, "send exit-status", err)
	}
	if err := s.channel.CloseWrite(); err != nil && !errors.Is(err, io.EOF) {
		return WrapError(CodeTransport, "close channel write side", err)
	}
	if err := s.channel.Close(); err != nil && !errors.Is(err, io.EOF) {
		return WrapError(CodeTransport, "close channel", err)
	}
	return nil
}

// Close runs doExit, so the server's run loop finalizes every session
// the same way regardless of which exit path the handler took. It
// does not track whether Abort already finalized the session: after
// an Abort, Close sends exit-status again on the closed channel and
// returns the resulting transport error.
func (s *Session) Close() error {
	return s.doExit()
}

// CloseWithoutStatus closes the channel without ever sending an
// exit-status request, for a handler that returned an error before
// calling Exit/Abort: the peer still observes the channel close, it
// just never learns a status code, matching the original crate's
// "erroring handler closes its channel without a reported exit
// status" behavior (there obtained for free from Channel's Drop impl;
// Go has no destructor, so the server's run loop calls this
// explicitly). A no-op if the channel was already handed off via
// IntoChannel. It is meant to run on the error path only, never
// alongside Close/doExit on the same session.
func (s *Session) CloseWithoutStatus() error {
	if s.channel == nil {
		return nil
	}
	if err := s.channel.Close(); err != nil && !errors.Is(err, io.EOF) {
		return WrapError(CodeTransport, "close channel", err)
	}
	return nil
}
