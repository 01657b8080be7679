package app

import (
	"shipping-carrier-service/internal/config"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/metrics"
	"shipping-carrier-service/internal/service/address"
	"shipping-carrier-service/internal/service/label"
	"shipping-carrier-service/internal/service/rating"
	"shipping-carrier-service/internal/service/tracking"
)

// Plugins are the carrier integrations, keyed by the cost method they serve.
// The flat "product" rating is built in and needs no entry.
type Plugins struct {
	Rates      map[domain.CostMethod]rating.Strategy
	Labels     map[domain.CostMethod]label.Generator
	Refreshers map[domain.CostMethod]tracking.Refresher
	Addresses  map[domain.CostMethod]address.Validator
}

type registrar struct {
	cfg     *config.Config
	logger  logx.Logger
	metrics *metrics.Registry
}

// install registers every plugin. Refreshers get the transient-error retry policy.
func (r registrar) install(p Plugins, agg *rating.Aggregator, orch *label.Orchestrator,
	trk *tracking.Service, addr *address.Service,
) {
	for m, s := range p.Rates {
		agg.Register(m, s)
	}
	for m, g := range p.Labels {
		orch.Register(m, g)
	}
	retry := tracking.RetryConfig{
		MaxAttempts: r.cfg.Tracking.MaxAttempts,
		BaseDelay:   r.cfg.Tracking.BaseDelay,
		MaxDelay:    r.cfg.Tracking.MaxDelay,
	}
	for m, ref := range p.Refreshers {
		if ref == nil {
			continue
		}
		trk.Register(m, tracking.NewRetryingRefresher(ref, r.logger.With(logx.String("cost_method", string(m))), r.metrics.RefreshRetries, retry))
	}
	for m, v := range p.Addresses {
		addr.Register(m, v)
	}
	r.logger.Info("carrier plugins installed",
		logx.Int("rates", len(p.Rates)),
		logx.Int("labels", len(p.Labels)),
		logx.Int("refreshers", len(p.Refreshers)),
		logx.Int("address_validators", len(p.Addresses)),
	)
}
