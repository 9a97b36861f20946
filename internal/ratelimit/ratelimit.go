// Package ratelimit provides a bounded per-caller token-bucket limiter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds limiter settings.
type Config struct {
	// Window is the minimum spacing between requests from one caller.
	// Zero disables limiting.
	Window     time.Duration `mapstructure:"window"`
	Burst      int           `mapstructure:"burst"`
	MaxCallers int           `mapstructure:"max_callers"`
	IdleTTL    time.Duration `mapstructure:"idle_ttl"`
}

// DefaultConfig allows one request per caller per second.
func DefaultConfig() Config {
	return Config{
		Window:     time.Second,
		Burst:      1,
		MaxCallers: 10000,
		IdleTTL:    10 * time.Minute,
	}
}

// Limiter tracks one token bucket per caller key. The number of tracked
// callers is capped; idle callers are pruned first, then the least
// recently seen.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	max     int
	idleTTL time.Duration
	now     func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter.
func New(cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxCallers <= 0 {
		cfg.MaxCallers = def.MaxCallers
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}

	limit := rate.Inf
	if cfg.Window > 0 {
		limit = rate.Every(cfg.Window)
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		limit:   limit,
		burst:   cfg.Burst,
		max:     cfg.MaxCallers,
		idleTTL: cfg.IdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether key may proceed now and consumes a token if so.
// The check and the update happen under one lock.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= l.max {
			l.pruneLocked(now)
		}
		if len(l.entries) >= l.max {
			l.evictOldestLocked()
		}
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked callers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Prune removes callers idle for longer than the idle TTL and returns how
// many were removed.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneLocked(l.now())
}

// Run prunes idle callers periodically until ctx is done.
func (l *Limiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Must be called with l.mu held.
func (l *Limiter) pruneLocked(now time.Time) int {
	cutoff := now.Add(-l.idleTTL)
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Must be called with l.mu held.
func (l *Limiter) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range l.entries {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = key, e.lastSeen
		}
	}
	delete(l.entries, oldestKey)
}
