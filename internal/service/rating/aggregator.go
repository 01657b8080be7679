// Package rating collects shipping rate offers from carriers.
package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Aggregator dispatches rating to the strategy registered for each carrier's cost method.
// Carriers without a strategy yield no offers.
type Aggregator struct {
	mu              sync.RWMutex
	strategies      map[domain.CostMethod]Strategy
	companyCurrency string
	logger          logx.Logger
	quotes          counterVec
}

// NewAggregator creates an Aggregator with the flat product strategy registered.
func NewAggregator(companyCurrency string, logger logx.Logger, quotes counterVec) *Aggregator {
	if logger == nil {
		logger = logx.Nop()
	}
	a := &Aggregator{
		strategies:      map[domain.CostMethod]Strategy{},
		companyCurrency: companyCurrency,
		logger:          logger,
		quotes:          quotes,
	}
	a.Register(domain.CostMethodProduct, NewProductPrice(companyCurrency))
	return a
}

// Register installs (or replaces) the strategy for a cost method.
func (a *Aggregator) Register(method domain.CostMethod, s Strategy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strategies[method] = s
}

func (a *Aggregator) strategy(method domain.CostMethod) (Strategy, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.strategies[method]
	return s, ok
}

func (a *Aggregator) count(method domain.CostMethod, outcome string) {
	if a.quotes != nil {
		a.quotes.WithLabelValues(string(method), outcome).Inc()
	}
}

func (a *Aggregator) carriers(ctx context.Context, r CarrierReader, ids []int64) ([]domain.Carrier, error) {
	if ids == nil {
		return r.ListCarriers(ctx)
	}
	out := make([]domain.Carrier, 0, len(ids))
	for _, id := range ids {
		c, err := r.GetCarrier(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, id)
		}
		out = append(out, *c)
	}
	return out, nil
}

// GetShippingRates quotes every requested carrier. Offers are returned in carrier order, unsorted.
func (a *Aggregator) GetShippingRates(ctx context.Context, r CarrierReader, entity domain.Shippable, req Request) ([]domain.RateOffer, error) {
	carriers, err := a.carriers(ctx, r, req.CarrierIDs)
	if err != nil {
		return nil, err
	}

	var offers []domain.RateOffer
	for _, c := range carriers {
		got, err := a.GetShippingRate(ctx, entity, c, req)
		if err != nil {
			return nil, err
		}
		offers = append(offers, got...)
	}
	return offers, nil
}

// GetShippingRate quotes a single carrier.
func (a *Aggregator) GetShippingRate(ctx context.Context, entity domain.Shippable, c domain.Carrier, req Request) ([]domain.RateOffer, error) {
	if err := c.CheckConfigured(); err != nil {
		a.count(c.CostMethod, "error")
		return nil, err
	}
	s, ok := a.strategy(c.CostMethod)
	if !ok {
		a.count(c.CostMethod, "skipped")
		return nil, nil
	}

	offers, err := s.Rates(ctx, entity, c, req)
	if err != nil {
		if req.Silent && errors.Is(err, apperr.ErrMissingWeight) {
			a.count(c.CostMethod, "skipped")
			a.logger.Warn("carrier rating skipped",
				logx.Event("rating_skipped"),
				logx.String("entity", entity.Label()),
				logx.Int64("carrier_id", c.ID),
				logx.Err(err),
			)
			return nil, nil
		}
		a.count(c.CostMethod, "error")
		return nil, fmt.Errorf("rate %s with %s: %w", entity.Label(), c.Name, err)
	}

	if req.IgnoreCarrierComputation {
		for i := range offers {
			offers[i].Cost = decimal.Zero
		}
	}
	a.count(c.CostMethod, "ok")
	return offers, nil
}

// SalePrice is the carrier pricing hook: the cost of the first offer, or zero in the
// company currency when the carrier quotes nothing or computation is ignored.
func (a *Aggregator) SalePrice(ctx context.Context, entity domain.Shippable, c domain.Carrier, opts Options) (decimal.Decimal, string, error) {
	if opts.IgnoreCarrierComputation {
		return decimal.Zero, a.companyCurrency, nil
	}
	offers, err := a.GetShippingRate(ctx, entity, c, Request{Options: opts})
	if err != nil {
		return decimal.Zero, "", err
	}
	if len(offers) == 0 {
		return decimal.Zero, a.companyCurrency, nil
	}
	return offers[0].Cost, offers[0].CostCurrency, nil
}
