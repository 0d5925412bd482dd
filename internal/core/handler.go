package core

// Handler runs application logic against a Session. Handlers are the
// leaf of the middleware chain: whatever remains after every
// Middleware has run. A Handler takes ownership of the Session value
// for the duration of the call and returns it (or a replacement) so
// that outer middleware can act on the session after the handler
// returns, mirroring the original crate's Session-by-value handoff.
type Handler func(session *Session) (*Session, error)

// Middleware wraps a Handler, able to act before and after the rest
// of the chain runs, modify the Session, or short-circuit by never
// calling Next. Middleware are composed outside-in: the first one
// registered on the Server sees the session first and the result
// last.
type Middleware func(session *Session, next Next) (*Session, error)

// Next is the remainder of the middleware chain below the current
// middleware. Calling Run invokes it exactly once.
type Next struct {
	handler Handler
}

// NewNext wraps handler as a Next. Exported for packages (like the
// middleware chain builder) that construct a Next outside this
// package; application code normally just receives one.
func NewNext(handler Handler) Next {
	return Next{handler: handler}
}

// Run invokes the wrapped handler with session.
func (n Next) Run(session *Session) (*Session, error) {
	return n.handler(session)
}
