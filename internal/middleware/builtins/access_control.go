package builtins

import (
	"fmt"
	"strings"

	"github.com/shenron-go/shenron/internal/core"
)

// AccessControl rejects Exec/ExecPty sessions whose command name (the
// first whitespace-separated token) is not in the allow-list.
// Sessions with no command (Pty, Shell, Subsystem) pass through
// unchanged.
type AccessControl struct {
	allowed map[string]struct{}
}

// NewAccessControl builds an AccessControl permitting exactly the
// given command names.
func NewAccessControl(allowed ...string) AccessControl {
	set := make(map[string]struct{}, len(allowed))
	for _, cmd := range allowed {
		set[cmd] = struct{}{}
	}
	return AccessControl{allowed: set}
}

func (a AccessControl) isAllowed(cmd string) bool {
	_, ok := a.allowed[cmd]
	return ok
}

// Middleware adapts AccessControl to core.Middleware.
func (a AccessControl) Middleware(session *core.Session, next core.Next) (*core.Session, error) {
	command, ok := session.Command()
	if !ok {
		return next.Run(session)
	}

	fields := strings.Fields(command)
	cmd := ""
	if len(fields) > 0 {
		cmd = fields[0]
	}

	if a.isAllowed(cmd) {
		return next.Run(session)
	}

	if err := session.WriteStderrString(fmt.Sprintf("Command not allowed: %s\n", cmd)); err != nil {
		return session, err
	}
	return session.Exit(1)
}
