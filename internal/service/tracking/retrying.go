package tracking

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig configures RetryingRefresher.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingRefresher retries transient carrier errors with exponential backoff.
type RetryingRefresher struct {
	next    Refresher
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(context.Context, time.Duration) bool
}

// NewRetryingRefresher wraps next. It returns nil when next is nil.
func NewRetryingRefresher(next Refresher, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingRefresher {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingRefresher{next: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// Refresh implements Refresher.
func (r *RetryingRefresher) Refresh(ctx context.Context, tn domain.TrackingNumber) (*Update, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		upd, err := r.next.Refresh(ctx, tn)
		if err == nil {
			return upd, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("tracking refresh retry",
			logx.String("number", tn.Number),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !r.sleep(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// isRetryable reports whether a carrier error is transient.
func isRetryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.ResourceExhausted,
		codes.Unavailable,
		codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func backoff(base, limit time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if limit > 0 && d > limit {
		return limit
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
