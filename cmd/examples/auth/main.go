// Command auth demonstrates password authentication with a fixed
// allow-list of usernames, a Go transliteration of examples/auth.rs
// (S5's rejection/acceptance scenario).
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

func whoami(session *core.Session) (*core.Session, error) {
	greeting := fmt.Sprintf("Welcome %s! You're connected from %s\r\n", session.User(), session.RemoteAddr())
	if err := session.WriteString(greeting); err != nil {
		return session, err
	}
	if err := session.WriteString("Press any key to exit.\r\n"); err != nil {
		return session, err
	}

	for {
		event, ok := session.Next()
		if !ok || event.Tag == core.EventInput || event.Tag == core.EventEOF {
			break
		}
	}

	if err := session.WriteString("Goodbye!\r\n"); err != nil {
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

	allowedUsers := map[string]struct{}{"admin": {}, "alice": {}, "bob": {}}
	const adminPassword = "supersecret"

	slog.Info("starting auth example on 0.0.0.0:2222")
	slog.Info("connect with: ssh -p 2222 admin@localhost")
	slog.Info("password: supersecret")

	srv := sshd.New().
		Bind("0.0.0.0:2222").
		HostKey(kp.Signer).
		PasswordAuth(func(user, password string) bool {
			if _, ok := allowedUsers[user]; !ok {
				slog.Warn("unknown user attempted login", "user", user)
				return false
			}
			if user == "admin" && password == adminPassword {
				slog.Info("admin logged in with password")
				return true
			}
			slog.Warn("password auth failed", "user", user)
			return false
		}).
		App(whoami)

	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
