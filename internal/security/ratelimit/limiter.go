package ratelimit

import (
	"sync"
	"time"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 15 * time.Minute
)

// Limiter enforces a sliding-window request budget per key. Keys are tenant
// database names on the general path; the strict path keys by caller address
// so login abuse from one source never consumes a tenant's budget.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	maxReqs  int
	duration time.Duration
	cleanup  *time.Ticker
}

type window struct {
	stamps   []time.Time
	lastSeen time.Time
}

func NewLimiter(maxRequests int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		maxReqs:  maxRequests,
		duration: duration,
		cleanup:  time.NewTicker(cleanupInterval),
	}
	go l.reapStale()
	return l
}

// Allow records a request under key and reports whether it fits the general
// budget. An empty key means the request carries no tenant context yet and
// is not limited here.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.take(key, l.maxReqs, l.duration)
}

// AllowStrict applies a tighter, separately-keyed budget for sensitive
// endpoints such as login.
func (l *Limiter) AllowStrict(identifier string, maxReqs int, duration time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.take("strict:"+identifier, maxReqs, duration)
}

func (l *Limiter) take(key string, maxReqs int, duration time.Duration) bool {
	now := time.Now()
	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}
	w.lastSeen = now

	// Prune expired stamps in place; the slice is small (bounded by maxReqs).
	cutoff := now.Add(-duration)
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= maxReqs {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

func (l *Limiter) reapStale() {
	for range l.cleanup.C {
		threshold := time.Now().Add(-staleAfter)
		l.mu.Lock()
		for key, w := range l.windows {
			if w.lastSeen.Before(threshold) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *Limiter) Stop() {
	l.cleanup.Stop()
}
