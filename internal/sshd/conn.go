package sshd

import (
	"log/slog"
	"net"

	"golang.org/x/crypto/ssh"

	"github.com/shenron-go/shenron/internal/core"
)

// ptyRequestPayload mirrors RFC 4254 §6.2's pty-req body.
type ptyRequestPayload struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

// envRequestPayload mirrors RFC 4254 §6.7's env body.
type envRequestPayload struct {
	Name  string
	Value string
}

// execRequestPayload mirrors RFC 4254 §6.5's exec body.
type execRequestPayload struct {
	Command string
}

// subsystemRequestPayload mirrors RFC 4254 §6.5's subsystem body.
type subsystemRequestPayload struct {
	Name string
}

// channelState is the channel state machine for a single accepted SSH
// "session" channel: it accumulates env-request variables and an
// optional pty-req until a shell/exec/subsystem request promotes the
// channel to a core.Session and hands it to the application handler.
// This is the Go analogue of the original crate's ShenronHandler
// fields (channel/user/env/pty), scoped per channel rather than per
// connection so that concurrent channels on one connection don't
// share mutable state.
type channelState struct {
	handler    core.Handler
	remoteAddr net.Addr
	user       string
	env        map[string]string
	pty        *ptyState

	channel  ssh.Channel
	requests <-chan *ssh.Request
}

type ptyState struct {
	term string
	size core.PtySize
}

// serve dispatches channel requests until one of shell/exec/subsystem
// promotes the channel to a Session, or the request stream ends
// without ever promoting (e.g. the client disconnects before sending
// one).
func (cs *channelState) serve() {
	for req := range cs.requests {
		switch req.Type {
		case "env":
			var payload envRequestPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed env request", "error", err)
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				continue
			}
			cs.env[payload.Name] = payload.Value
			if req.WantReply {
				_ = req.Reply(true, nil)
			}

		case "pty-req":
			var payload ptyRequestPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed pty-req", "error", err)
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				continue
			}
			cs.pty = &ptyState{
				term: payload.Term,
				size: core.PtySize{
					Width:       payload.Columns,
					Height:      payload.Rows,
					PixelWidth:  payload.Width,
					PixelHeight: payload.Height,
				},
			}
			if req.WantReply {
				_ = req.Reply(true, nil)
			}

		case "shell":
			kind := core.Shell()
			if cs.pty != nil {
				kind = core.Pty(cs.pty.term, cs.pty.size)
			}
			cs.promote(kind, req)
			return

		case "exec":
			var payload execRequestPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed exec request", "error", err)
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				continue
			}
			kind := core.Exec(payload.Command)
			if cs.pty != nil {
				kind = core.ExecPty(payload.Command, cs.pty.term, cs.pty.size)
			}
			cs.promote(kind, req)
			return

		case "subsystem":
			var payload subsystemRequestPayload
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				slog.Debug("malformed subsystem request", "error", err)
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				continue
			}
			cs.promote(core.SubsystemKind(payload.Name), req)
			return

		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

// promote builds the Session and runs the application handler chain
// in its own goroutine. The remaining request stream (window-change,
// signal) is handed to the Session, which takes over draining it.
func (cs *channelState) promote(kind core.SessionKind, req *ssh.Request) {
	if req.WantReply {
		_ = req.Reply(true, nil)
	}

	session := core.NewSession(cs.channel, cs.requests, kind, cs.user, cs.env, cs.remoteAddr)

	go runHandler(cs.handler, session)
}

// runHandler runs handler to completion and finalizes whatever exit
// state it left on the session. A handler error is logged and closes
// the channel without an exit-status, so the peer observes the
// channel close instead of the connection hanging open until the whole
// underlying connection eventually goes away.
func runHandler(handler core.Handler, session *core.Session) {
	result, err := handler(session)
	if err != nil {
		slog.Error("handler error", "user", session.User(), "remote", session.RemoteAddr(), "error", err)
		if result == nil {
			result = session
		}
		if closeErr := result.CloseWithoutStatus(); closeErr != nil {
			slog.Debug("error closing channel after handler error", "user", session.User(), "error", closeErr)
		}
		return
	}

	if err := result.Close(); err != nil {
		slog.Debug("error finalizing session", "user", result.User(), "error", err)
	}
}

// handleConn runs the channel-accept loop for one accepted SSH
// connection until the transport closes it. Global (connection-level)
// requests are discarded, matching the server's scope: this module
// only cares about session channels.
func handleConn(sconn *ssh.ServerConn, chans <-chan ssh.NewChannel, globalRequests <-chan *ssh.Request, handler core.Handler) {
	go ssh.DiscardRequests(globalRequests)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			slog.Debug("failed to accept channel", "error", err)
			continue
		}

		cs := &channelState{
			handler:    handler,
			remoteAddr: sconn.RemoteAddr(),
			user:       sconn.User(),
			env:        make(map[string]string),
			channel:    channel,
			requests:   requests,
		}

		go cs.serve()
	}
}
