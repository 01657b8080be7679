package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"shipping-carrier-service/internal/config"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/metrics"
	"shipping-carrier-service/internal/repository"
	"shipping-carrier-service/internal/service/label"
	"shipping-carrier-service/internal/service/shipping"
	"shipping-carrier-service/internal/service/tracking"
	"shipping-carrier-service/internal/session"
	"shipping-carrier-service/internal/transport/kafka"
)

// resetConfigFlags gives config.Load a clean flag set and no test binary arguments.
func resetConfigFlags(t *testing.T) {
	t.Helper()
	oldArgs, oldFlags := os.Args, pflag.CommandLine
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pflag.CommandLine = fs
	os.Args = []string{"cmd"}
	t.Cleanup(func() {
		pflag.CommandLine = oldFlags
		os.Args = oldArgs
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             8080,
		LogLevel:         "info",
		OperationTimeout: time.Second,
		Kafka:            config.DefaultKafka(),
		Tracking:         config.DefaultTracking(),
		Weight:           config.DefaultWeight(),
		Company:          config.Company{Currency: "USD", Rates: map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.9")}},
		Sessions:         config.DefaultSessions(),
		QuoteLimit:       config.DefaultQuoteLimit(),
	}
}

func setupTestContainer(t *testing.T, cfg *config.Config) *dig.Container {
	t.Helper()

	c := dig.New()

	providers := []struct {
		name     string
		provider any
	}{
		{"context", func() context.Context { return context.Background() }},
		{"logger", logx.Nop},
		{"config", func() *config.Config { return cfg }},
		{"metrics", func() (*metrics.Registry, error) { return metrics.NewRegistry(prometheus.NewRegistry()) }},
		{"pgxpool", func() *pgxpool.Pool { return nil }},
		{"store", func() *repository.Store { return repository.NewStore(nil) }},
		{"carriers", func() *repository.CarrierRepo { return repository.NewCarrierRepo(nil) }},
	}
	for _, p := range providers {
		require.NoErrorf(t, c.Provide(p.provider), "provide %s", p.name)
	}

	require.NoError(t, registerDomainServices(c, Plugins{}))
	require.NoError(t, registerHTTP(c))
	require.NoError(t, registerWorker(c))

	t.Cleanup(func() {
		_ = c.Invoke(func(s *session.Store) { _ = s.Close() })
	})
	return c
}

func TestRegisterServiceAndHTTP_ProvidesServerAndServices(t *testing.T) {
	t.Parallel()

	c := setupTestContainer(t, testConfig())

	err := c.Invoke(func(
		srv *http.Server,
		shippingSvc *shipping.Service,
		orch *label.Orchestrator,
		trk *tracking.Service,
	) {
		require.NotNil(t, srv)
		require.Equal(t, ":8080", srv.Addr)
		require.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
		require.Greater(t, srv.WriteTimeout, time.Minute)
		require.NotNil(t, shippingSvc)
		require.NotNil(t, orch)
		require.NotNil(t, trk)

		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}

func TestRegisterWorker_NoBrokersGivesNilConsumer(t *testing.T) {
	t.Parallel()

	c := setupTestContainer(t, testConfig())
	err := c.Invoke(func(consumer *kafka.Consumer) {
		require.Nil(t, consumer)
	})
	require.NoError(t, err)
}

func TestNewCurrencies(t *testing.T) {
	t.Parallel()

	table, err := newCurrencies(testConfig())
	require.NoError(t, err)
	got, err := table.Convert(decimal.NewFromInt(10), "USD", "EUR")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("9").Equal(got), got.String())

	cfg := testConfig()
	cfg.Company.Rates = map[string]decimal.Decimal{"XXX": decimal.NewFromInt(2)}
	_, err = newCurrencies(cfg)
	require.Error(t, err)
}

func TestNewQuoteLimit(t *testing.T) {
	t.Parallel()

	reg, err := metrics.NewRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.QuoteLimit.Limit = 1
	mw := newQuoteLimit(cfg, logx.Nop(), reg).Handler()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/1/rates", nil))
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestProvideAll_Success(t *testing.T) {
	t.Parallel()

	c := dig.New()
	err := provideAll(c,
		func() context.Context { return context.Background() },
		func() time.Duration { return 3 * time.Second },
	)
	require.NoError(t, err)

	err = c.Invoke(func(ctx context.Context, d time.Duration) {
		require.NotNil(t, ctx)
		require.Equal(t, 3*time.Second, d)
	})
	require.NoError(t, err)
}

func TestProvideAll_InvalidProvider(t *testing.T) {
	t.Parallel()

	type bad struct{}
	require.Error(t, provideAll(dig.New(), bad{}))
}

func TestRegisterCore_ProvidesDependencies(t *testing.T) {
	resetConfigFlags(t)

	c := dig.New()
	ctx := context.Background()
	require.NoError(t, registerCore(c, ctx, prometheus.NewRegistry()))

	err := c.Invoke(func(gotCtx context.Context, logger logx.Logger, cfg *config.Config, reg *metrics.Registry) {
		require.Equal(t, ctx, gotCtx)
		require.NotNil(t, logger)
		require.NotNil(t, cfg)
		require.NotNil(t, reg.RateQuotes)
	})
	require.NoError(t, err)
}

func TestRegisterDb_UsesDbConnectAndProvidesPool(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()
	cfg := &config.Config{DB: config.DB{Host: "localhost", Port: "5432", User: "user", Pass: "pass", Name: "db"}}

	require.NoError(t, c.Provide(func() context.Context { return ctx }))
	require.NoError(t, c.Provide(func() *config.Config { return cfg }))
	require.NoError(t, c.Provide(logx.Nop))

	stubPool := &pgxpool.Pool{}
	stubConnect := func(gotCtx context.Context, _ logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
		require.Equal(t, ctx, gotCtx)
		require.Equal(t, cfg.DB.DSN(), dsn)
		require.Equal(t, 10, retries)
		require.Equal(t, time.Second, delay)
		return stubPool, nil
	}
	require.NoError(t, registerDb(c, stubConnect))

	err := c.Invoke(func(pool *pgxpool.Pool) {
		require.Same(t, stubPool, pool)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_Build_DBError(t *testing.T) {
	resetConfigFlags(t)

	builder := NewContainerBuilder().
		WithRegisterer(prometheus.NewRegistry()).
		WithDBConnect(func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
			return nil, fmt.Errorf("db failed")
		})

	c, err := builder.build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c)

	err = c.Invoke(func(*pgxpool.Pool) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "db failed")
}

func TestContainerBuilder_MustBuild_DoesNotFatal(t *testing.T) {
	t.Parallel()

	builder := NewContainerBuilder().
		WithRegisterer(prometheus.NewRegistry()).
		WithLogFatalf(func(format string, args ...interface{}) {
			require.FailNowf(t, "logFatalf must not be called", format, args...)
		})

	require.NotNil(t, builder.MustBuild(context.Background()))
}
