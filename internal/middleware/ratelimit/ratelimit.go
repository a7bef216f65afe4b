// Package ratelimit caps API requests per client address.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window  = time.Minute
	idleTTL = 10 * time.Minute
)

type Config struct {
	RequestsPerMinute int
	// SweepInterval is how often idle clients are forgotten.
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 120, SweepInterval: 5 * time.Minute}
}

// Stats is a point-in-time view of the limiter.
type Stats struct {
	Rejected int64 `json:"rejected"`
	Clients  int   `json:"clients"`
}

type bucket struct {
	opened time.Time
	seen   time.Time
	count  int
}

// Limiter counts requests per client in fixed windows that open on the
// client's first request. Steady traffic does not extend a window.
type Limiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	rejected atomic.Int64
	done     chan struct{}
	stop     sync.Once
}

// NewLimiter starts a limiter and its sweeper. Zero config fields take
// DefaultConfig values.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	l := &Limiter{
		limit:   cfg.RequestsPerMinute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go l.sweepEvery(cfg.SweepInterval)
	return l
}

// take records a request from key. When it is over the limit, reset is the
// time left until the key's window closes.
func (l *Limiter) take(key string) (ok bool, reset time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.buckets[key]
	if b == nil || now.Sub(b.opened) >= window {
		b = &bucket{opened: now}
		l.buckets[key] = b
	}
	b.seen = now
	b.count++
	if b.count <= l.limit {
		return true, 0
	}
	l.rejected.Add(1)
	return false, window - now.Sub(b.opened)
}

// Allow records a request from key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.take(key)
	return ok
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep forgets clients idle for longer than idleTTL.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idleTTL)
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stop.Do(func() { close(l.done) })
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	return Stats{Rejected: l.rejected.Load(), Clients: n}
}

// Middleware rejects requests over the limit with a Retry-After header.
// keyFn picks the client key; reject writes the body and may be nil.
func (l *Limiter) Middleware(keyFn func(*http.Request) string, reject http.HandlerFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, reset := l.take(keyFn(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			secs := int((reset + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			reject(w, r)
		})
	}
}
