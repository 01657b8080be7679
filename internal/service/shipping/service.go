// Package shipping quotes, applies and manages shipping on sales and shipments.
package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
	"shipping-carrier-service/internal/service/rating"
)

// Service runs every operation in its own transaction.
type Service struct {
	repo             shippingtx.Runner
	rates            rater
	applier          *Applier
	weights          weigher
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a shipping Service.
func NewService(r shippingtx.Runner, rates rater, applier *Applier, weights weigher, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		rates:            rates,
		applier:          applier,
		weights:          weights,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func loadShipment(ctx context.Context, tx shippingtx.Repository, id int64) (*domain.Shipment, error) {
	sh, err := tx.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: shipment %d", apperr.ErrNotFound, id)
	}
	return sh, nil
}

func loadSale(ctx context.Context, tx shippingtx.Repository, id int64) (*domain.Sale, error) {
	sale, err := tx.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: sale %d", apperr.ErrNotFound, id)
	}
	return sale, nil
}

// QuoteShipment returns the shipment's rate offers, cheapest first.
func (s *Service) QuoteShipment(ctx context.Context, id int64, req rating.Request) ([]domain.RateOffer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var offers []domain.RateOffer
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sh, err := loadShipment(ctx, tx, id)
		if err != nil {
			return err
		}
		offers, err = s.rates.GetShippingRates(ctx, tx, sh, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	domain.SortByCost(offers)
	return offers, nil
}

// QuoteSale returns the sale's rate offers, cheapest first.
func (s *Service) QuoteSale(ctx context.Context, id int64, req rating.Request) ([]domain.RateOffer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var offers []domain.RateOffer
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sale, err := loadSale(ctx, tx, id)
		if err != nil {
			return err
		}
		offers, err = s.rates.GetShippingRates(ctx, tx, sale, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	domain.SortByCost(offers)
	return offers, nil
}

// ApplyShipmentRate commits rate onto the shipment.
func (s *Service) ApplyShipmentRate(ctx context.Context, id int64, rate domain.RateOffer) (*domain.Shipment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Shipment
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sh, err := loadShipment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.applier.ApplyToShipment(ctx, tx, sh, rate); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplySaleRate commits rate onto the sale, replacing its shipping line in the same transaction.
func (s *Service) ApplySaleRate(ctx context.Context, id int64, rate domain.RateOffer) (*domain.Sale, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Sale
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sale, err := loadSale(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.applier.ApplyToSale(ctx, tx, sale, rate); err != nil {
			return err
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CopyShipment duplicates a shipment as a new untracked draft without packages.
func (s *Service) CopyShipment(ctx context.Context, id int64) (*domain.Shipment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cp *domain.Shipment
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sh, err := loadShipment(ctx, tx, id)
		if err != nil {
			return err
		}
		cp = sh.Copy()
		return tx.InsertShipment(ctx, cp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shipment copied",
		logx.Event("shipment_copied"),
		logx.Int64("shipment_id", id),
		logx.Int64("copy_id", cp.ID),
	)
	return cp, nil
}

// CancelShipment cancels the shipment, drops its packages and cancels every tracking
// number issued for it or its packages. Cancelling twice is a no-op.
func (s *Service) CancelShipment(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cancelled int
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sh, err := loadShipment(ctx, tx, id)
		if err != nil {
			return err
		}
		switch sh.State {
		case domain.ShipmentCancel:
			return nil
		case domain.ShipmentDone:
			return fmt.Errorf("%w: %s is done", apperr.ErrInvalidState, sh.Label())
		}

		origins := []domain.Origin{domain.ShipmentOrigin{ShipmentID: sh.ID}}
		for _, p := range sh.Packages {
			origins = append(origins, domain.PackageOrigin{PackageID: p.ID})
		}
		numbers, err := tx.ListTrackingNumbersByOrigin(ctx, origins)
		if err != nil {
			return err
		}
		for _, tn := range numbers {
			if !tn.Active() {
				continue
			}
			tn.Cancel()
			if err := tx.UpdateTrackingNumber(ctx, tn); err != nil {
				return err
			}
			cancelled++
		}

		if err := tx.DeletePackages(ctx, sh.ID); err != nil {
			return err
		}
		return tx.UpdateShipmentState(ctx, sh.ID, domain.ShipmentCancel)
	})
	if err != nil {
		return err
	}

	s.logger.Info("shipment cancelled",
		logx.Event("shipment_cancelled"),
		logx.Int64("shipment_id", id),
		logx.Int("tracking_cancelled", cancelled),
	)
	return nil
}

// ShipmentWeight returns the shipment weight in unit (the default unit when empty).
func (s *Service) ShipmentWeight(ctx context.Context, id int64, unit string) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var w decimal.Decimal
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sh, err := loadShipment(ctx, tx, id)
		if err != nil {
			return err
		}
		w, err = s.weights.ShipmentWeight(sh, unit)
		return err
	})
	return w, err
}

// SaleWeight returns the sale weight in unit (the default unit when empty).
func (s *Service) SaleWeight(ctx context.Context, id int64, unit string) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var w decimal.Decimal
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		sale, err := loadSale(ctx, tx, id)
		if err != nil {
			return err
		}
		w, err = s.weights.SaleWeight(sale, unit)
		return err
	})
	return w, err
}
