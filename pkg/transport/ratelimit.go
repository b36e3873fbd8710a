package transport

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/observability"
)

// ErrTooManyRequests is returned by Limiter.Allow once a key has used up
// its window.
var ErrTooManyRequests = errors.New("rate limit exceeded")

// Limiter is a fixed-window rate limiter that tracks request counts per key
// in memory. All methods are safe for concurrent access.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	counters  map[string]*counter
	lastSweep time.Time
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewLimiter creates a limiter admitting limit requests per key per window.
// A limit <= 0 disables limiting.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*counter),
	}
}

// Limit returns the configured number of requests per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow records a request for key. It returns the number of requests left
// in the current window, or ErrTooManyRequests once the limit is exceeded.
func (l *Limiter) Allow(key string) (int, error) {
	if l.limit <= 0 {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		l.counters[key] = &counter{count: 1, windowAt: now}
		return l.limit - 1, nil
	}

	c.count++
	if c.count > l.limit {
		return 0, ErrTooManyRequests
	}

	return l.limit - c.count, nil
}

// sweep drops counters whose window has ended. It runs at most once per
// window. Must be called with the lock held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, c := range l.counters {
		if now.Sub(c.windowAt) >= l.window {
			delete(l.counters, key)
		}
	}
	l.lastSweep = now
}

// RateLimit returns middleware that enforces limiter per connection peer
// address and
// reports the budget in X-RateLimit-Limit and X-RateLimit-Remaining. A nil
// limiter disables the middleware.
func RateLimit(limiter *Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limiter.Limit() <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, err := limiter.Allow(PeerIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if err != nil {
				observability.RateLimitRejectedTotal.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
				WriteAPIError(w, api.NewTooManyRequestsError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
