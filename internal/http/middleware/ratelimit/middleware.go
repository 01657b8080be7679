package ratelimit

import (
	"io"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"shipping-carrier-service/internal/logx"
)

// Middleware throttles carrier quote requests per client address.
type Middleware struct {
	logger  logx.Logger
	denied  prometheus.Counter
	limiter Limiter
}

// New returns a throttle. A nil limiter lets everything through.
func New(logger logx.Logger, denied prometheus.Counter, limiter Limiter) *Middleware {
	if logger == nil {
		logger = logx.Nop()
	}
	if limiter == nil {
		limiter = Unlimited{}
	}
	return &Middleware{logger: logger, denied: denied, limiter: limiter}
}

// Handler returns chi-style middleware.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if m.limiter.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			if m.denied != nil {
				m.denied.Inc()
			}
			m.logger.Warn("quote throttled",
				logx.Event("quote_throttled"),
				logx.String("ip", ip),
				logx.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := io.WriteString(w, `{"error":"too many quote requests"}`); err != nil {
				m.logger.Debug("throttle response write failed", logx.String("ip", ip), logx.Err(err))
			}
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
