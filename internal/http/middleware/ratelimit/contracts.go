package ratelimit

import "time"

// Limiter decides whether the client identified by key may run one more quote.
type Limiter interface {
	Allow(key string) bool
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// Unlimited lets every request through.
type Unlimited struct{}

// Allow always returns true.
func (Unlimited) Allow(string) bool { return true }
