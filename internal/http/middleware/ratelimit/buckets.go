package ratelimit

import (
	"sync"
	"time"
)

// Config is a quota of Limit requests per Window for each key.
type Config struct {
	Limit  int
	Window time.Duration
	// IdleTTL evicts keys not seen for that long. Zero keeps them forever.
	IdleTTL time.Duration
	// MaxKeys caps tracked clients. New clients are refused once it is reached.
	MaxKeys int
}

// Buckets is a per-key token bucket refilled at Limit/Window tokens per second.
type Buckets struct {
	clock    Clock
	capacity float64
	perSec   float64
	idleTTL  time.Duration
	maxKeys  int

	mu        sync.Mutex
	keys      map[string]*tokens
	lastSweep time.Time
}

type tokens struct {
	left float64
	seen time.Time
}

// NewBuckets builds a limiter; a nil clock uses the wall clock.
func NewBuckets(clock Clock, cfg Config) *Buckets {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Buckets{
		clock:    clock,
		capacity: float64(cfg.Limit),
		perSec:   float64(cfg.Limit) / cfg.Window.Seconds(),
		idleTTL:  cfg.IdleTTL,
		maxKeys:  max(cfg.MaxKeys, 0),
		keys:     make(map[string]*tokens),
	}
}

// Allow takes one token from key's bucket.
func (b *Buckets) Allow(key string) bool {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweep(now)

	t, ok := b.keys[key]
	if !ok {
		if b.maxKeys > 0 && len(b.keys) >= b.maxKeys {
			return false
		}
		t = &tokens{left: b.capacity, seen: now}
		b.keys[key] = t
	}

	if dt := now.Sub(t.seen); dt > 0 {
		t.left = min(b.capacity, t.left+dt.Seconds()*b.perSec)
	}
	t.seen = now

	if t.left < 1 {
		return false
	}
	t.left--
	return true
}

// Len returns the number of tracked keys.
func (b *Buckets) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.keys)
}

func (b *Buckets) sweep(now time.Time) {
	if b.idleTTL <= 0 {
		return
	}
	if !b.lastSweep.IsZero() && now.Sub(b.lastSweep) < b.idleTTL/2 {
		return
	}
	b.lastSweep = now
	for k, t := range b.keys {
		if now.Sub(t.seen) > b.idleTTL {
			delete(b.keys, k)
		}
	}
}
