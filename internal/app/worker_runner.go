package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"shipping-carrier-service/internal/config"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/service/tracking"
	"shipping-carrier-service/internal/transport/kafka"
)

// WorkerRunner runs the tracking sweep and the tracking event consumer.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker until its context is cancelled. Any other error panics.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type sweeper interface {
	Sweep(ctx context.Context) (tracking.SweepResult, error)
}

func workerRun(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	logger logx.Logger,
	svc *tracking.Service,
	consumer *kafka.Consumer,
) error {
	if svc == nil || cfg == nil {
		return fmt.Errorf("tracking service is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer)

	startSweepLoop(ctx, logger, svc, cfg.Tracking.RefreshInterval, cfg.Tracking.RefreshTimeout)
	logger.Info("tracking-worker started",
		logx.Duration("interval", cfg.Tracking.RefreshInterval),
		logx.Bool("kafka", consumer != nil),
	)

	if consumer == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}

// startSweepLoop runs one sweep per interval. A sweep is bounded by timeout and never
// overlaps the next one.
func startSweepLoop(ctx context.Context, logger logx.Logger, s sweeper, interval, timeout time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx := ctx
				cancel := context.CancelFunc(func() {})
				if timeout > 0 {
					sweepCtx, cancel = context.WithTimeout(ctx, timeout)
				}
				if _, err := s.Sweep(sweepCtx); err != nil && ctx.Err() == nil {
					logger.Error("tracking sweep failed", logx.Event("tracking_sweep_failed"), logx.Err(err))
				}
				cancel()
			}
		}
	}()
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
