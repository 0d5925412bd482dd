// Package middleware builds the onion-shaped call chain that runs
// before an application Handler: a list of core.Middleware values
// composed, outermost first, into a single core.Handler. It is the Go
// analogue of the original crate's middleware/chain.rs,
// middleware/erased.rs and middleware/next.rs — but since core.Handler
// and core.Middleware are already plain function types in Go, no
// trait-object erasure is needed; composition is just closures.
package middleware

import "github.com/shenron-go/shenron/internal/core"

// Build composes handler with middleware into a single core.Handler.
// Middleware run outside-in: the first element of middleware is the
// outermost layer, seeing the session first on the way in and last on
// the way out — matching Server.With's documented ordering.
//
// Composition happens back-to-front so that chain[i] closes over
// chain[i+1] as its core.Next, exactly as build_chain folds the
// middleware slice in reverse in the original crate.
func Build(handler core.Handler, chain []core.Middleware) core.Handler {
	built := handler
	for i := len(chain) - 1; i >= 0; i-- {
		mw := chain[i]
		next := core.NewNext(built)
		built = func(session *core.Session) (*core.Session, error) {
			return mw(session, next)
		}
	}
	return built
}
