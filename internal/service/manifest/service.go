// Package manifest manages carrier manifests: one open manifest per carrier and warehouse,
// collecting tracked shipments until it is closed.
package manifest

import (
	"context"
	"fmt"
	"time"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
)

// Service is the manifest lifecycle.
type Service struct {
	repo             shippingtx.Runner
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a Service.
func NewService(repo shippingtx.Runner, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: repo, operationTimeout: timeout, logger: logger, now: time.Now}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// openManifest returns the single open manifest, or nil.
func openManifest(ctx context.Context, tx shippingtx.Repository, carrierID, warehouseID int64) (*domain.Manifest, error) {
	open, err := tx.ListOpenManifests(ctx, carrierID, warehouseID)
	if err != nil {
		return nil, err
	}
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return &open[0], nil
	default:
		return nil, fmt.Errorf("%w: %d open manifests for carrier %d and warehouse %d",
			apperr.ErrConflict, len(open), carrierID, warehouseID)
	}
}

// GetOrOpen returns the open manifest of the carrier and warehouse, creating it if needed.
func (s *Service) GetOrOpen(ctx context.Context, carrierID, warehouseID int64) (*domain.Manifest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Manifest
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		c, err := tx.GetCarrier(ctx, carrierID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, carrierID)
		}

		m, err := openManifest(ctx, tx, carrierID, warehouseID)
		if err != nil || m != nil {
			out = m
			return err
		}

		m = &domain.Manifest{CarrierID: carrierID, WarehouseID: warehouseID, State: domain.ManifestOpen}
		if err := tx.InsertManifest(ctx, m); err != nil {
			return err
		}
		out = m
		s.logger.Info("manifest opened",
			logx.Event("manifest_opened"),
			logx.Int64("manifest_id", m.ID),
			logx.Int64("carrier_id", carrierID),
			logx.Int64("warehouse_id", warehouseID),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks that at most one manifest is open for the carrier and warehouse.
func (s *Service) Validate(ctx context.Context, carrierID, warehouseID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		_, err := openManifest(ctx, tx, carrierID, warehouseID)
		return err
	})
}

func loadManifest(ctx context.Context, tx shippingtx.Repository, id int64) (*domain.Manifest, error) {
	m, err := tx.GetManifest(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: manifest %d", apperr.ErrNotFound, id)
	}
	return m, nil
}

// Get returns a manifest.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Manifest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Manifest
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		var err error
		out, err = loadManifest(ctx, tx, id)
		return err
	})
	return out, err
}

// Close closes an open manifest.
func (s *Service) Close(ctx context.Context, id int64) (*domain.Manifest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Manifest
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		m, err := loadManifest(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := m.Close(s.now().UTC()); err != nil {
			return err
		}
		if err := tx.UpdateManifest(ctx, *m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manifest closed",
		logx.Event("manifest_closed"),
		logx.Int64("manifest_id", out.ID),
		logx.Time("close_date", *out.CloseDate),
	)
	return out, nil
}

// AddShipment puts a tracked shipment of the manifest's carrier and warehouse on the manifest.
// Adding a shipment that is already on it is a no-op.
func (s *Service) AddShipment(ctx context.Context, manifestID, shipmentID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		m, err := loadManifest(ctx, tx, manifestID)
		if err != nil {
			return err
		}
		sh, err := tx.GetShipment(ctx, shipmentID)
		if err != nil {
			return err
		}
		if sh == nil {
			return fmt.Errorf("%w: shipment %d", apperr.ErrNotFound, shipmentID)
		}
		if err := m.Accepts(sh); err != nil {
			return err
		}
		if sh.ManifestID != nil {
			return nil
		}
		return tx.SetShipmentManifest(ctx, sh.ID, &m.ID)
	})
}
