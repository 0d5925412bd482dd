// Command shutdown demonstrates the server's graceful-shutdown
// semantics (S6): new connections stop being accepted once the
// process receives SIGINT, while any in-flight session runs to
// completion. A Go transliteration of examples/shutdown.rs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shenron-go/shenron/internal/core"
	"github.com/shenron-go/shenron/internal/hostkey"
	"github.com/shenron-go/shenron/internal/sshd"
)

func app(session *core.Session) (*core.Session, error) {
	switch session.Kind().Tag {
	case core.KindPty, core.KindShell:
		if err := session.WriteString("Connected! Server may shut down at any time.\r\n"); err != nil {
			return session, err
		}
		if err := session.WriteString("Type anything, Ctrl+C to exit:\r\n"); err != nil {
			return session, err
		}

		for {
			data, ok := session.Input()
			if !ok {
				break
			}
			if containsByte(data, 3) {
				break
			}
			if err := session.Write(data); err != nil {
				return session, err
			}
		}

		if err := session.WriteString("\r\nGoodbye!\r\n"); err != nil {
			return session, err
		}
	case core.KindExec, core.KindExecPty:
		cmd, _ := session.Command()
		if err := session.WriteString(fmt.Sprintf("Executed: %s\n", cmd)); err != nil {
			return session, err
		}
	}

	return session.Exit(0)
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
	fmt.Println("Starting server on 0.0.0.0:2222")
	fmt.Println("Press Ctrl+C to shut down gracefully")

	kp, err := hostkey.GenerateRandom()
	if err != nil {
		slog.Error("generate host key", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownSignal := make(chan struct{})
	go func() {
		<-ctx.Done()
		fmt.Println("\nShutdown signal received, stopping server...")
		close(shutdownSignal)
	}()

	srv := sshd.New().
		Bind("0.0.0.0:2222").
		HostKey(kp.Signer).
		ShutdownSignal(shutdownSignal).
		App(app)

	if err := srv.Serve(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Server stopped")
}
