package middleware

import (
	"testing"

	"github.com/shenron-go/shenron/internal/core"
)

func marker(name string, trail *[]string) core.Middleware {
	return func(session *core.Session, next core.Next) (*core.Session, error) {
		*trail = append(*trail, name+":before")
		session, err := next.Run(session)
		*trail = append(*trail, name+":after")
		return session, err
	}
}

func TestBuildOrdersOutsideIn(t *testing.T) {
	var trail []string

	handler := core.Handler(func(session *core.Session) (*core.Session, error) {
		trail = append(trail, "handler")
		return session, nil
	})

	built := Build(handler, []core.Middleware{
		marker("outer", &trail),
		marker("inner", &trail),
	})

	if _, err := built(nil); err != nil {
		t.Fatalf("built handler returned error: %v", err)
	}

	want := []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}
	if len(trail) != len(want) {
		t.Fatalf("got %v, want %v", trail, want)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Fatalf("got %v, want %v", trail, want)
		}
	}
}

func TestBuildNoMiddleware(t *testing.T) {
	called := false
	handler := core.Handler(func(session *core.Session) (*core.Session, error) {
		called = true
		return session, nil
	})

	built := Build(handler, nil)
	if _, err := built(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected handler to be invoked directly when there is no middleware")
	}
}

func TestBuildShortCircuits(t *testing.T) {
	handlerCalled := false
	handler := core.Handler(func(session *core.Session) (*core.Session, error) {
		handlerCalled = true
		return session, nil
	})

	shortCircuit := core.Middleware(func(session *core.Session, next core.Next) (*core.Session, error) {
		return session, nil
	})

	built := Build(handler, []core.Middleware{shortCircuit})
	if _, err := built(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handlerCalled {
		t.Fatalf("handler should not run when middleware short-circuits")
	}
}
