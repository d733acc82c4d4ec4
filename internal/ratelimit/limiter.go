// Package ratelimit caps requests per key (client IP and bucket) with an
// in-process token bucket or a shared Redis window.
package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/diewo77/agence/httpx"
	"golang.org/x/time/rate"
)

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows at most limit events per window for key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Decision
}

// InMemoryLimiter keeps one token bucket per key. Buckets refill limit tokens
// per window and are dropped after two idle windows.
type InMemoryLimiter struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	sweep   time.Time
}

type bucket struct {
	lim      *rate.Limiter
	limit    int
	lastSeen time.Time
}

func NewInMemory(window time.Duration) *InMemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &InMemoryLimiter{window: window, now: time.Now, buckets: make(map[string]*bucket)}
}

// WithClock replaces the time source, for tests.
func (l *InMemoryLimiter) WithClock(now func() time.Time) *InMemoryLimiter {
	l.now = now
	return l
}

func (l *InMemoryLimiter) Allow(_ context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanup(now)

	b, ok := l.buckets[key]
	if !ok || b.limit != limit {
		every := l.window / time.Duration(limit)
		b = &bucket{lim: rate.NewLimiter(rate.Every(every), limit), limit: limit}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
		res.CancelAt(now)
		return Decision{Allowed: false, Limit: limit, RetryAfter: delay}
	}
	remaining := int(math.Floor(b.lim.TokensAt(now)))
	return Decision{Allowed: true, Limit: limit, Remaining: max(remaining, 0)}
}

func (l *InMemoryLimiter) cleanup(now time.Time) {
	if now.Before(l.sweep) {
		return
	}
	l.sweep = now.Add(l.window)
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > 2*l.window {
			delete(l.buckets, k)
		}
	}
}

// Middleware rejects requests beyond limit per client IP within bucket with 429.
// onReject, when set, is called for each rejection.
func Middleware(l Limiter, bucketName string, limit int, onReject func(bucket string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Allow(r.Context(), bucketName+":"+httpx.ClientIP(r), limit)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			if onReject != nil {
				onReject(bucketName)
			}
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusTooManyRequests, "too_many_requests", nil)
				return
			}
			http.Error(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		})
	}
}
