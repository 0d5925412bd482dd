// Command echo runs a minimal shenron server that echoes whatever the
// client types back at it, demonstrating the core Session event loop
// (a Go transliteration of the original crate's examples/echo.rs).
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/sshd"
)

func echo(session *core.Session) (*core.Session, error) {
	if err := session.WriteString("Welcome to Shenron!\r\n"); err != nil {
		return session, err
	}
	if err := session.WriteString("Hello, " + session.User() + "!\r\n"); err != nil {
		return session, err
	}
	if err := session.WriteString("Type anything and it will be echoed back.\r\n"); err != nil {
		return session, err
	}
	if err := session.WriteString("Press Ctrl+C or Ctrl+D to exit.\r\n\r\n"); err != nil {
		return session, err
	}

	for {
		event, ok := session.Next()
		if !ok {
			return session.Exit(0)
		}

		switch event.Tag {
		case core.EventInput:
			if containsByte(event.Input, 3) || containsByte(event.Input, 4) {
				if err := session.WriteString("\r\nGoodbye!\r\n"); err != nil {
					return session, err
				}
				return session.Exit(0)
			}
			if err := session.WriteString("Got: " + string(event.Input) + "\r\n"); err != nil {
				return session, err
			}
		case core.EventResize:
			slog.Debug("resized", "width", event.Resize.Width, "height", event.Resize.Height)
		case core.EventEOF:
			return session.Exit(0)
		}
	}
}

func containsByte(data []byte, b byte) bool {
	for _, c := range data {
		if c == b {
			return true
		}
	}
	return false
}

func logMiddleware(session *core.Session, next core.Next) (*core.Session, error) {
	slog.Info("connected", "user", session.User(), "remote", session.RemoteAddr())
	result, err := next.Run(session)
	slog.Info("session ended")
	return result, err
}

func main() {
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	slog.Info("starting echo server on 0.0.0.0:2222")
	slog.Info("connect with: ssh -p 2222 localhost")

	srv := sshd.New().
		Bind("0.0.0.0:2222").
		HostKey(kp.Signer).
		With(logMiddleware).
		App(echo)

	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
