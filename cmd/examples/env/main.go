// Command env prints the environment variables and session metadata
// a client sent before the shell was promoted, a Go transliteration
// of examples/env.rs.
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

func app(session *core.Session) (*core.Session, error) {
	writes := []string{
		"Environment variables:\r\n",
		"----------------------\r\n",
	}
	for _, line := range writes {
		if err := session.WriteString(line); err != nil {
			return session, err
		}
	}

	env := session.Env()
	if len(env) == 0 {
		if err := session.WriteString("(none received)\r\n"); err != nil {
			return session, err
		}
		if err := session.WriteString("\r\nTip: use `ssh -o SendEnv=FOO` to send variables\r\n"); err != nil {
			return session, err
		}
	} else {
		for k, v := range env {
			if err := session.WriteString(fmt.Sprintf("  %s=%s\r\n", k, v)); err != nil {
				return session, err
			}
		}
	}

	if err := session.WriteString("\r\nSession info:\r\n"); err != nil {
		return session, err
	}
	if term, ok := session.Term(); ok {
		if err := session.WriteString(fmt.Sprintf("  TERM=%s\r\n", term)); err != nil {
			return session, err
		}
	}
	if err := session.WriteString(fmt.Sprintf("  USER=%s\r\n", session.User())); err != nil {
		return session, err
	}
	if err := session.WriteString(fmt.Sprintf("  REMOTE=%s\r\n", session.RemoteAddr())); err != nil {
		return session, err
	}

	return session.Exit(0)
}

func main() {
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	srv := sshd.New().Bind("0.0.0.0:2222").HostKey(kp.Signer).App(app)

	slog.Info("starting env example on 0.0.0.0:2222")
	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
