package builtins

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shenron-go/shenron/internal/core"
)

// RateLimiter gates new sessions per remote IP using a token bucket
// per key, the Go-native analogue of the original crate's
// governor-backed RateLimiter. Each distinct remote IP gets its own
// independent bucket, created lazily on first use.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	burst   int
}

// NewRateLimiter allows count sessions immediately (the bucket's
// burst) and then count sessions per period per remote IP, matching
// the original crate's New(count, period).
func NewRateLimiter(count int, period time.Duration) *RateLimiter {
	if period <= 0 {
		period = time.Second
	}
	if count <= 0 {
		count = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Every(period / time.Duration(count)),
		burst:   count,
	}
}

// PerSecond allows count sessions per second per remote IP.
func PerSecond(count int) *RateLimiter {
	return NewRateLimiter(count, time.Second)
}

// PerMinute allows count sessions per minute per remote IP.
func PerMinute(count int) *RateLimiter {
	return NewRateLimiter(count, time.Minute)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(rl.r, rl.burst)
		rl.buckets[key] = limiter
	}
	return limiter
}

// Middleware adapts RateLimiter to core.Middleware.
func (rl *RateLimiter) Middleware(session *core.Session, next core.Next) (*core.Session, error) {
	key := remoteKey(session.RemoteAddr())

	if !rl.limiterFor(key).Allow() {
		if err := session.WriteStderrString("Rate limit exceeded, try again later\n"); err != nil {
			return session, err
		}
		return session.Exit(1)
	}

	return next.Run(session)
}

func remoteKey(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
