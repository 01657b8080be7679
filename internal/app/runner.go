package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/session"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP API.
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a Runner bound to the API entry point.
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun starts the HTTP server using the provided DI container. Anything but a
// requested shutdown exits the process with status 1.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}

	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exit != nil {
			r.exit(1)
		}
	}
}

func containerLogger(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(ctx context.Context, logger logx.Logger, server *http.Server, pool *pgxpool.Pool, sessions *session.Store) error {
	defer closeResources(logger, pool, sessions)

	errCh := startServer(server, logger)
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	logger.Info("shutting down shipping-api")
	gracefulShutdown(server, logger, shutdownTimeout)
	return ctx.Err()
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("shipping-api listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(logger logx.Logger, pool *pgxpool.Pool, sessions *session.Store) {
	if sessions != nil {
		if err := sessions.Close(); err != nil {
			logger.Error("session store close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
