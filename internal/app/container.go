package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"shipping-carrier-service/internal/config"
	"shipping-carrier-service/internal/currency"
	"shipping-carrier-service/internal/http/handlers"
	"shipping-carrier-service/internal/http/middleware/ratelimit"
	"shipping-carrier-service/internal/http/router"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/metrics"
	"shipping-carrier-service/internal/repository"
	"shipping-carrier-service/internal/service/address"
	"shipping-carrier-service/internal/service/carrierlog"
	"shipping-carrier-service/internal/service/label"
	"shipping-carrier-service/internal/service/manifest"
	"shipping-carrier-service/internal/service/packaging"
	"shipping-carrier-service/internal/service/rating"
	"shipping-carrier-service/internal/service/shipping"
	"shipping-carrier-service/internal/service/tracking"
	"shipping-carrier-service/internal/service/weight"
	"shipping-carrier-service/internal/session"
	"shipping-carrier-service/internal/transport/kafka"
	"shipping-carrier-service/internal/uom"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect  dbConnectFunc
	logFatalf  func(string, ...interface{})
	registerer prometheus.Registerer
	plugins    Plugins
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:  connectDbWithRetry,
		logFatalf:  log.Fatalf,
		registerer: prometheus.DefaultRegisterer,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// WithRegisterer sets where domain metrics are registered.
func (b *ContainerBuilder) WithRegisterer(reg prometheus.Registerer) *ContainerBuilder {
	if reg != nil {
		b.registerer = reg
	}
	return b
}

// WithPlugins sets the carrier integrations.
func (b *ContainerBuilder) WithPlugins(p Plugins) *ContainerBuilder {
	b.plugins = p
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.registerer); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerDomainServices(container, b.plugins); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, reg prometheus.Registerer) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		func() (*metrics.Registry, error) { return metrics.NewRegistry(reg) },
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, logger logx.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB, provideStore, repository.NewCarrierRepo)
}

func provideStore(ctx context.Context, pool *pgxpool.Pool) (*repository.Store, error) {
	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := repository.EnsureSchema(schemaCtx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repository.NewStore(pool), nil
}

func newCurrencies(cfg *config.Config) (*currency.Table, error) {
	t := currency.Default(cfg.Company.Currency)
	for code, rate := range cfg.Company.Rates {
		if err := t.SetRate(code, rate); err != nil {
			return nil, fmt.Errorf("currency rate %s: %w", code, err)
		}
	}
	return t, nil
}

func newSessions(cfg *config.Config) (*session.Store, error) {
	return session.Open(cfg.Sessions.Dir, cfg.Sessions.TTL)
}

type domainIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Metrics    *metrics.Registry
	Store      *repository.Store
	Sessions   *session.Store
	Currencies *currency.Table
}

type domainOut struct {
	dig.Out

	Shipping  *shipping.Service
	Labels    *label.Orchestrator
	Tracking  *tracking.Service
	Manifests *manifest.Service
	Addresses *address.Service
}

func newDomain(in domainIn, plugins Plugins) domainOut {
	cfg, logger := in.Config, in.Logger
	units := uom.Default()

	calc := weight.NewCalculator(units, cfg.Weight.Rounding, cfg.Weight.Unit)
	agg := rating.NewAggregator(cfg.Company.Currency, logger, in.Metrics.RateQuotes)
	logs := carrierlog.NewRecorder()
	applier := shipping.NewApplier(in.Currencies, logs, logger)

	out := domainOut{
		Shipping: shipping.NewService(in.Store, agg, applier, calc, cfg.OperationTimeout, logger),
		Labels: label.NewOrchestrator(label.Deps{
			Repo:     in.Store,
			Sessions: in.Sessions,
			Rates:    agg,
			Applier:  applier,
			Packer:   packaging.NewReconciler(units, logger),
			Logs:     logs,
			Labels:   in.Metrics.LabelsGenerated,
			Logger:   logger,
		}, cfg.Weight.Unit, 0),
		Tracking:  tracking.NewService(in.Store, cfg.OperationTimeout, logger, in.Metrics.TrackingRefresh),
		Manifests: manifest.NewService(in.Store, cfg.OperationTimeout, logger),
		Addresses: address.NewService(in.Store, cfg.OperationTimeout, logger),
	}

	registrar{cfg: cfg, logger: logger, metrics: in.Metrics}.install(plugins, agg, out.Labels, out.Tracking, out.Addresses)
	return out
}

func registerDomainServices(container *dig.Container, plugins Plugins) error {
	return provideAll(container,
		newCurrencies,
		newSessions,
		func(in domainIn) domainOut { return newDomain(in, plugins) },
	)
}

func newQuoteLimit(cfg *config.Config, logger logx.Logger, reg *metrics.Registry) *ratelimit.Middleware {
	var lim ratelimit.Limiter = ratelimit.Unlimited{}
	if q := cfg.QuoteLimit; q.Limit > 0 {
		lim = ratelimit.NewBuckets(ratelimit.RealClock{}, ratelimit.Config{
			Limit:   q.Limit,
			Window:  q.Window,
			IdleTTL: q.IdleTTL,
			MaxKeys: q.MaxClients,
		})
	}
	return ratelimit.New(logger, reg.QuotesThrottled, lim)
}

type httpIn struct {
	dig.In

	Logger     logx.Logger
	QuoteLimit *ratelimit.Middleware
	Carriers   *repository.CarrierRepo
	Shipping   *shipping.Service
	Labels     *label.Orchestrator
	Tracking   *tracking.Service
	Manifests  *manifest.Service
	Addresses  *address.Service
}

func newRouter(in httpIn) http.Handler {
	l := in.Logger
	return router.New(l, router.Handlers{
		Base:      handlers.New(l),
		Carriers:  handlers.NewCarrierHandler(l, in.Carriers),
		Shipping:  handlers.NewShippingHandler(l, in.Shipping),
		Labels:    handlers.NewLabelHandler(l, in.Labels),
		Tracking:  handlers.NewTrackingHandler(l, in.Tracking),
		Manifests: handlers.NewManifestHandler(l, in.Manifests),
		Addresses: handlers.NewAddressHandler(l, in.Addresses),
	}, in.QuoteLimit.Handler())
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      75 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		newQuoteLimit,
		newRouter,
		serverProvider,
	)
}

func newConsumer(cfg *config.Config, logger logx.Logger, svc *tracking.Service) (*kafka.Consumer, error) {
	k := cfg.Kafka
	return kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.TrackingTopic, kafka.TrackingHandler(svc, logger))
}

func registerWorker(container *dig.Container) error {
	return provideAll(container, newConsumer)
}
