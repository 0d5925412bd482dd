// Command subsystem demonstrates dispatching on a named subsystem
// request, a Go transliteration of examples/subsystem.rs. It ignores
// the file-transfer subsystem (out of core scope) and implements a
// toy "echo" subsystem instead.
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
	switch session.Kind().Tag {
	case core.KindSubsystem:
		return runSubsystem(session)
	case core.KindPty, core.KindShell:
		if err := session.WriteString("This server only supports subsystems.\r\n"); err != nil {
			return session, err
		}
		if err := session.WriteString("Try: ssh -s echo\r\n"); err != nil {
			return session, err
		}
		return session.Exit(0)
	case core.KindExec, core.KindExecPty:
		cmd, _ := session.Command()
		if err := session.WriteStderrString(fmt.Sprintf("Exec not supported: %s\n", cmd)); err != nil {
			return session, err
		}
		return session.Exit(1)
	default:
		return session.Exit(1)
	}
}

func runSubsystem(session *core.Session) (*core.Session, error) {
	name, _ := session.Subsystem()

	if name != "echo" {
		if err := session.WriteStderrString(fmt.Sprintf("Unknown subsystem: %s\n", name)); err != nil {
			return session, err
		}
		return session.Exit(1)
	}

	for {
		data, ok := session.Input()
		if !ok {
			return session.Exit(0)
		}
		if err := session.WriteString(fmt.Sprintf("Got: %s\r\n", data)); err != nil {
			return session, err
		}
	}
}

func main() {
	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	fmt.Println("Starting server on 0.0.0.0:2222")

	srv := sshd.New().Bind("0.0.0.0:2222").HostKey(kp.Signer).App(app)
	if err := srv.Serve(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Server stopped")
}
