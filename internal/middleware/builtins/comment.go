package builtins

import "github.com/shenron-go/shenron/internal/core"

// Comment prints a fixed message to the session's primary stream
// after the rest of the chain has run, typically used as the
// outermost middleware to leave a farewell note before the channel
// closes.
type Comment string

// Middleware adapts Comment to core.Middleware.
func (c Comment) Middleware(session *core.Session, next core.Next) (*core.Session, error) {
	session, err := next.Run(session)
	if err != nil {
		return session, err
	}
	if err := session.WriteString(string(c)); err != nil {
		return session, err
	}
	return session, nil
}
