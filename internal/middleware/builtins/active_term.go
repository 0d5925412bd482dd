// Package builtins provides ready-to-use core.Middleware values for
// common session policies, grounded on the corresponding
// src/middleware/builtins/*.rs files in the original crate: requiring
// a pty, reporting elapsed time, structured session logging,
// printing a farewell comment, restricting commands, and rate
// limiting new sessions per remote address.
package builtins

import "github.com/shenron-go/shenron/internal/core"

// RequirePty rejects any session that did not negotiate a pty,
// writing an error to stderr and exiting with status 1. It is the Go
// name for the original crate's active_term, spelled out since a bare
// "ActiveTerm" name doesn't read as a gate to a Go audience.
func RequirePty(session *core.Session, next core.Next) (*core.Session, error) {
	if _, _, ok := session.Pty(); !ok {
		if err := session.WriteStderrString("PTY required\n"); err != nil {
			return session, err
		}
		return session.Abort(1)
	}
	return next.Run(session)
}
