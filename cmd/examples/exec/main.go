// Command exec demonstrates handling one-shot `ssh host <command>`
// sessions, a Go transliteration of examples/exec.rs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/sshd"
)

func app(session *core.Session) (*core.Session, error) {
	command, ok := session.Command()
	if !ok {
		return session.Exit(0)
	}

	var output string
	switch command {
	case "whoami":
		output = session.User() + "\n"
	case "date":
		output = time.Now().Format("2006-01-02 15:04:05") + "\n"
	case "uptime":
		output = "up 0 days, mass hysteria\n"
	case "env":
		env := session.Env()
		if len(env) == 0 {
			output = "(no environment variables)\n"
			break
		}
		for k, v := range env {
			output += fmt.Sprintf("%s=%s\n", k, v)
		}
	case "help":
		output = "Available commands: whoami, date, uptime, env, help\n"
	default:
		if err := session.WriteStderrString(fmt.Sprintf("Unknown command: %s\n", command)); err != nil {
			return session, err
		}
		return session.Exit(127)
	}

	if err := session.WriteString(output); err != nil {
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

	slog.Info("starting exec example on 0.0.0.0:2222")
	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
