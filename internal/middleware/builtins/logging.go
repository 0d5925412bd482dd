package builtins

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shenron-go/shenron/internal/core"
)

// Logging logs session start and end (or failure) via slog, mirroring
// the original crate's tracing-based logging built-in.
func Logging(session *core.Session, next core.Next) (*core.Session, error) {
	user := session.User()
	remote := session.RemoteAddr()
	kind := describeKind(session.Kind())

	slog.Info("session started", "user", user, "remote", remote, "kind", kind)

	start := time.Now()
	result, err := next.Run(session)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("session error", "user", user, "remote", remote, "elapsed", elapsed, "error", err)
		return result, err
	}

	exitCode, _ := result.ExitCode()
	slog.Info("session ended", "user", user, "remote", remote, "elapsed", elapsed, "exit_code", exitCode)
	return result, nil
}

func describeKind(kind core.SessionKind) string {
	switch kind.Tag {
	case core.KindPty:
		return fmt.Sprintf("pty(term=%s, size=%dx%d)", kind.Term, kind.Size.Width, kind.Size.Height)
	case core.KindExec:
		return fmt.Sprintf("exec(%s)", kind.Command)
	case core.KindExecPty:
		return fmt.Sprintf("exec_pty(term=%s, command=%s)", kind.Term, kind.Command)
	case core.KindShell:
		return "shell"
	case core.KindSubsystem:
		return fmt.Sprintf("subsystem(%s)", kind.Subsystem)
	default:
		return "unknown"
	}
}
