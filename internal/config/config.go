package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"shipping-carrier-service/internal/service/weight"
)

// Config stores service settings.
type Config struct {
	Port     int
	LogLevel string
	// OperationTimeout bounds one service call.
	OperationTimeout time.Duration
	DB               DB
	Kafka            Kafka
	Tracking         Tracking
	Weight           Weight
	Company          Company
	Sessions         Sessions
	QuoteLimit       QuoteLimit
}

// DB is the Postgres connection.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds the connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Kafka is the tracking event consumer. No brokers disables it.
type Kafka struct {
	Brokers       []string
	GroupID       string
	TrackingTopic string
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Tracking is the refresh sweep and its retry policy.
type Tracking struct {
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
}

// Weight is the weight computation policy.
type Weight struct {
	Rounding weight.Rounding
	Unit     string
}

// Company holds the company currency and the exchange rates against it.
type Company struct {
	Currency string
	Rates    map[string]decimal.Decimal
}

// Sessions is the label wizard store. An empty Dir keeps sessions in memory.
type Sessions struct {
	Dir string
	TTL time.Duration
}

// QuoteLimit throttles rate quote requests per client. A zero Limit disables it.
type QuoteLimit struct {
	Limit      int
	Window     time.Duration
	IdleTTL    time.Duration
	MaxClients int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseRates reads "EUR=0.92,GBP=0.79" pairs.
func parseRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for code, v := range raw {
		rate, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("invalid rate for %s: must be positive", code)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return out, nil
}

func envRates(key string) map[string]string {
	out := map[string]string{}
	for _, pair := range splitList(os.Getenv(key)) {
		code, rate, ok := strings.Cut(pair, "=")
		if ok {
			out[code] = rate
		}
	}
	return out
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Config{
		LogLevel: getenv("LOG_LEVEL", "info"),
		DB: DB{
			Host: getenv("POSTGRES_HOST", defaultDB.Host),
			Port: getenv("POSTGRES_PORT", defaultDB.Port),
			User: getenv("POSTGRES_USER", defaultDB.User),
			Pass: getenv("POSTGRES_PASSWORD", defaultDB.Pass),
			Name: getenv("POSTGRES_DB", defaultDB.Name),
		},
		Kafka: Kafka{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			GroupID:       getenv("KAFKA_GROUP_ID", defaultKafka.GroupID),
			TrackingTopic: getenv("KAFKA_TRACKING_TOPIC", defaultKafka.TrackingTopic),
		},
		Company: Company{Currency: strings.ToUpper(getenv("COMPANY_CURRENCY", defaultCurrency))},
		Sessions: Sessions{
			Dir: os.Getenv("SESSIONS_DIR"),
		},
		Weight: Weight{Unit: getenv("WEIGHT_UNIT", defaultWeight.Unit)},
	}

	var err error
	if cfg.Port, err = envInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.OperationTimeout, err = envDuration("OPERATION_TIMEOUT", defaultOperationTimeout); err != nil {
		return nil, err
	}
	if cfg.Tracking, err = loadTracking(); err != nil {
		return nil, err
	}
	if cfg.Sessions.TTL, err = envDuration("SESSIONS_TTL", defaultSessions.TTL); err != nil {
		return nil, err
	}
	if cfg.QuoteLimit, err = loadQuoteLimit(); err != nil {
		return nil, err
	}

	rounding := getenv("WEIGHT_ROUNDING", string(defaultWeight.Rounding))
	rates := envRates("CURRENCY_RATES")

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	pflag.DurationVar(&cfg.Tracking.RefreshInterval, "tracking-interval", cfg.Tracking.RefreshInterval, "tracking refresh sweep interval")
	pflag.StringVar(&rounding, "weight-rounding", rounding, "weight rounding: none, ceil or quantize2")
	pflag.StringToStringVar(&rates, "currency-rate", rates, "exchange rate against the company currency, e.g. EUR=0.92")
	pflag.IntVar(&cfg.QuoteLimit.Limit, "quote-limit", cfg.QuoteLimit.Limit, "rate quotes allowed per client and window (0 disables)")
	pflag.StringVar(&cfg.Sessions.Dir, "sessions-dir", cfg.Sessions.Dir, "label wizard session directory (empty keeps them in memory)")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.Weight.Rounding, err = weight.ParseRounding(rounding); err != nil {
		return nil, err
	}
	if cfg.Company.Rates, err = parseRates(rates); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadTracking() (Tracking, error) {
	t := defaultTracking
	var err error
	if t.RefreshInterval, err = envDuration("TRACKING_REFRESH_INTERVAL", t.RefreshInterval); err != nil {
		return Tracking{}, err
	}
	if t.RefreshTimeout, err = envDuration("TRACKING_REFRESH_TIMEOUT", t.RefreshTimeout); err != nil {
		return Tracking{}, err
	}
	if t.MaxAttempts, err = envInt("TRACKING_RETRY_MAX_ATTEMPTS", t.MaxAttempts); err != nil {
		return Tracking{}, err
	}
	if t.BaseDelay, err = envDuration("TRACKING_RETRY_BASE_DELAY", t.BaseDelay); err != nil {
		return Tracking{}, err
	}
	if t.MaxDelay, err = envDuration("TRACKING_RETRY_MAX_DELAY", t.MaxDelay); err != nil {
		return Tracking{}, err
	}
	return t, nil
}

func loadQuoteLimit() (QuoteLimit, error) {
	q := defaultQuoteLimit
	var err error
	if q.Limit, err = envInt("QUOTE_LIMIT", q.Limit); err != nil {
		return QuoteLimit{}, err
	}
	if q.Window, err = envDuration("QUOTE_LIMIT_WINDOW", q.Window); err != nil {
		return QuoteLimit{}, err
	}
	if q.IdleTTL, err = envDuration("QUOTE_LIMIT_IDLE_TTL", q.IdleTTL); err != nil {
		return QuoteLimit{}, err
	}
	if q.MaxClients, err = envInt("QUOTE_LIMIT_MAX_CLIENTS", q.MaxClients); err != nil {
		return QuoteLimit{}, err
	}
	return q, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid postgres port: %q", c.DB.Port)
	}
	if c.Tracking.RefreshInterval <= 0 {
		return fmt.Errorf("invalid tracking refresh interval: %s", c.Tracking.RefreshInterval)
	}
	if c.Tracking.MaxAttempts < 1 {
		return fmt.Errorf("invalid tracking retry attempts: %d", c.Tracking.MaxAttempts)
	}
	if len(c.Company.Currency) != 3 {
		return fmt.Errorf("invalid company currency: %q", c.Company.Currency)
	}
	if c.QuoteLimit.Limit < 0 {
		return fmt.Errorf("invalid quote limit: %d", c.QuoteLimit.Limit)
	}
	if c.QuoteLimit.Limit > 0 && c.QuoteLimit.Window <= 0 {
		return fmt.Errorf("invalid quote limit window: %s", c.QuoteLimit.Window)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("invalid sessions ttl: %s", c.Sessions.TTL)
	}
	return nil
}
