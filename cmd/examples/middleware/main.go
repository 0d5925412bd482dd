// Command middleware demonstrates a built-in middleware (Comment)
// wrapping a slow handler, a Go transliteration of examples/middleware.rs.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/middleware/builtins"
	"github.com/shenron-go/shenron/internal/sshd"
)

func sleepAndDie(session *core.Session) (*core.Session, error) {
	if err := session.WriteString("Welcome to Shenron!\r\n"); err != nil {
		return session, err
	}

	time.Sleep(time.Second)

	return session.Exit(0)
}

func main() {
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	slog.Info("starting middleware example on 0.0.0.0:2222")
	slog.Info("connect with: ssh -p 2222 localhost")

	srv := sshd.New().
		Bind("0.0.0.0:2222").
		HostKey(kp.Signer).
		With(builtins.Comment("Cya! Wouldn't wanna be ya!").Middleware).
		App(sleepAndDie)

	if err := srv.Serve(context.Background()); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}
