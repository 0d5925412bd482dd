package builtins

import (
	"fmt"
	"time"

	"github.com/shenron-go/shenron/internal/core"
)

// Elapsed reports how long the session lasted once the rest of the
// chain returns, written to the primary stream just before the
// handler's own exit takes effect.
func Elapsed(session *core.Session, next core.Next) (*core.Session, error) {
	start := time.Now()

	session, err := next.Run(session)
	if err != nil {
		return session, err
	}

	if err := session.WriteString(fmt.Sprintf("Session lasted: %s\r\n", time.Since(start))); err != nil {
		return session, err
	}
	return session, nil
}
