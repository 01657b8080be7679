package config

import (
	"time"

	"shipping-carrier-service/internal/service/weight"
)

const (
	defaultPort             = 8080
	defaultOperationTimeout = 3 * time.Second
	defaultCurrency         = "USD"
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultKafka = Kafka{
	GroupID:       "shipping-tracking",
	TrackingTopic: "carrier.tracking",
}

var defaultTracking = Tracking{
	RefreshInterval: 15 * time.Minute,
	RefreshTimeout:  10 * time.Minute,
	MaxAttempts:     3,
	BaseDelay:       200 * time.Millisecond,
	MaxDelay:        2 * time.Second,
}

var defaultWeight = Weight{
	Rounding: weight.RoundingNone,
	Unit:     "kg",
}

var defaultSessions = Sessions{
	TTL: time.Hour,
}

var defaultQuoteLimit = QuoteLimit{
	Limit:      30,
	Window:     time.Minute,
	IdleTTL:    10 * time.Minute,
	MaxClients: 10000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default consumer settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultTracking returns the default refresh settings.
func DefaultTracking() Tracking {
	return defaultTracking
}

// DefaultWeight returns the default weight policy.
func DefaultWeight() Weight {
	return defaultWeight
}

// DefaultSessions returns the default wizard store settings.
func DefaultSessions() Sessions {
	return defaultSessions
}

// DefaultQuoteLimit returns the default quote throttle.
func DefaultQuoteLimit() QuoteLimit {
	return defaultQuoteLimit
}
