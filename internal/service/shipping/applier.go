package shipping

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/currency"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
)

// Applier commits a chosen rate offer onto a sale or shipment inside the caller's transaction.
type Applier struct {
	currencies currency.Converter
	logs       carrierLogger
	logger     logx.Logger
}

// NewApplier creates an Applier. logs may be nil.
func NewApplier(currencies currency.Converter, logs carrierLogger, logger logx.Logger) *Applier {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Applier{currencies: currencies, logs: logs, logger: logger}
}

// Cost rounds the rate in its own currency, then converts it into the entity currency.
// An entity without a currency adopts the rate currency.
func (a *Applier) Cost(entity domain.Shippable, rate domain.RateOffer) (decimal.Decimal, string, error) {
	if rate.Cost.IsNegative() {
		return decimal.Zero, "", fmt.Errorf("%w: negative rate cost %s", apperr.ErrInvalid, rate.Cost)
	}
	cost, err := a.currencies.Round(rate.CostCurrency, rate.Cost)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("round rate: %w", err)
	}

	target := entity.EntityCurrency()
	if target == "" || strings.EqualFold(target, rate.CostCurrency) {
		return cost, strings.ToUpper(rate.CostCurrency), nil
	}
	cost, err = a.currencies.Convert(cost, rate.CostCurrency, target)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("convert rate for %s: %w", entity.Label(), err)
	}
	return cost, strings.ToUpper(target), nil
}

func (a *Applier) carrier(ctx context.Context, tx shippingtx.Repository, rate domain.RateOffer) (*domain.Carrier, error) {
	c, err := tx.GetCarrier(ctx, rate.CarrierID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, rate.CarrierID)
	}
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}
	if rate.ServiceID != nil {
		if _, ok := c.Service(*rate.ServiceID); !ok {
			return nil, fmt.Errorf("%w: service %d is not offered by carrier %q", apperr.ErrInvalid, *rate.ServiceID, c.Name)
		}
	}
	return c, nil
}

// Apply dispatches on the entity kind.
func (a *Applier) Apply(ctx context.Context, tx shippingtx.Repository, entity domain.Shippable, rate domain.RateOffer) error {
	switch e := entity.(type) {
	case *domain.Shipment:
		return a.ApplyToShipment(ctx, tx, e, rate)
	case *domain.Sale:
		return a.ApplyToSale(ctx, tx, e, rate)
	default:
		return fmt.Errorf("%w: cannot apply a rate to %T", apperr.ErrInvalid, entity)
	}
}

// ApplyToShipment sets carrier, service and cost on the shipment.
func (a *Applier) ApplyToShipment(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, rate domain.RateOffer) error {
	c, err := a.carrier(ctx, tx, rate)
	if err != nil {
		return err
	}
	cost, cur, err := a.Cost(s, rate)
	if err != nil {
		return err
	}

	s.Shipping = selection(rate, cost, cur)
	if err := tx.UpdateShipmentShipping(ctx, s.ID, s.Shipping); err != nil {
		return err
	}
	if err := a.log(ctx, tx, s, c, rate, cost, cur); err != nil {
		return err
	}

	a.logger.Info("rate applied",
		logx.Event("rate_applied"),
		logx.Int64("shipment_id", s.ID),
		logx.Int64("carrier_id", c.ID),
		logx.Decimal("cost", cost),
		logx.String("currency", cur),
	)
	return nil
}

// ApplyToSale sets carrier, service and cost on the sale and replaces its shipping line.
func (a *Applier) ApplyToSale(ctx context.Context, tx shippingtx.Repository, sale *domain.Sale, rate domain.RateOffer) error {
	c, err := a.carrier(ctx, tx, rate)
	if err != nil {
		return err
	}
	if c.Product == nil {
		return fmt.Errorf("%w: carrier %q has no carrier product for the shipping line", apperr.ErrMissingConfiguration, c.Name)
	}
	cost, cur, err := a.Cost(sale, rate)
	if err != nil {
		return err
	}

	sale.Shipping = selection(rate, cost, cur)
	if err := tx.UpdateSaleShipping(ctx, sale.ID, sale.Shipping); err != nil {
		return err
	}

	line := &domain.SaleLine{
		SaleID:       sale.ID,
		Product:      c.Product,
		Description:  rate.DisplayName,
		Quantity:     decimal.NewFromInt(1),
		Unit:         c.Product.SellingUnit(),
		UnitPrice:    cost,
		ShipmentCost: true,
	}
	if line.Description == "" {
		line.Description = c.Name
	}
	if err := tx.ReplaceShipmentCostLine(ctx, sale.ID, line); err != nil {
		return err
	}
	kept := sale.Lines[:0]
	for _, l := range sale.Lines {
		if !l.ShipmentCost {
			kept = append(kept, l)
		}
	}
	sale.Lines = append(kept, *line)

	if err := a.log(ctx, tx, sale, c, rate, cost, cur); err != nil {
		return err
	}

	a.logger.Info("rate applied",
		logx.Event("rate_applied"),
		logx.Int64("sale_id", sale.ID),
		logx.Int64("carrier_id", c.ID),
		logx.Int64("line_id", line.ID),
		logx.Decimal("cost", cost),
		logx.String("currency", cur),
	)
	return nil
}

func selection(rate domain.RateOffer, cost decimal.Decimal, cur string) domain.Shipping {
	carrierID := rate.CarrierID
	sh := domain.Shipping{CarrierID: &carrierID, Cost: cost, CostCurrency: cur}
	if rate.ServiceID != nil {
		id := *rate.ServiceID
		sh.ServiceID = &id
	}
	return sh
}

func (a *Applier) log(ctx context.Context, tx shippingtx.Repository, owner domain.Shippable, c *domain.Carrier,
	rate domain.RateOffer, cost decimal.Decimal, cur string) error {
	if a.logs == nil {
		return nil
	}
	text := fmt.Sprintf("Applied rate %q: %s %s (quoted %s %s)",
		rate.DisplayName, cost.String(), cur, rate.Cost.String(), rate.CostCurrency)
	_, err := a.logs.Add(ctx, tx, owner, c.ID, text)
	return err
}
