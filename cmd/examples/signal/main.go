// Command signal demonstrates handling the protocol's "signal"
// channel request via the typed core.Signal enum (S4-adjacent event
// ordering), a Go transliteration of examples/signal.rs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/sshd"
)

func handle(session *core.Session) (*core.Session, error) {
	if err := session.WriteString("Running... (send SIGINT to stop)\r\n"); err != nil {
		return session, err
	}

	for {
		event, ok := session.Next()
		if !ok {
			return session.Exit(0)
		}

		switch event.Tag {
		case core.EventInput:
			if containsByte(event.Input, 3) {
				if err := session.WriteString("\r\nCtrl+C received\r\n"); err != nil {
					return session, err
				}
				return session.Exit(0)
			}
			if err := session.Write(event.Input); err != nil {
				return session, err
			}
		case core.EventSignal:
			switch event.Signal {
			case core.SignalINT:
				if err := session.WriteString("\r\nSIGINT received\r\n"); err != nil {
					return session, err
				}
				return session.Exit(0)
			case core.SignalTERM:
				if err := session.WriteString("\r\nSIGTERM received\r\n"); err != nil {
					return session, err
				}
				return session.Exit(0)
			default:
				if err := session.WriteString(fmt.Sprintf("\r\nSignal: %s\r\n", event.Signal)); err != nil {
					return session, err
				}
			}
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

func main() {
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	slog.Info("starting signal example on 0.0.0.0:2222")
	slog.Info("connect with: ssh -p 2222 localhost")

	srv := sshd.New().Bind("0.0.0.0:2222").HostKey(kp.Signer).App(handle)
	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
