// Package address validates postal addresses with the carrier's address service.
package address

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
)

// Service dispatches address validation to the provider of the carrier's cost method.
type Service struct {
	repo             shippingtx.Runner
	operationTimeout time.Duration
	logger           logx.Logger

	mu        sync.RWMutex
	providers map[domain.CostMethod]Validator
}

// NewService creates a Service.
func NewService(repo shippingtx.Runner, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             repo,
		operationTimeout: timeout,
		logger:           logger,
		providers:        map[domain.CostMethod]Validator{},
	}
}

// Register installs the provider for a cost method.
func (s *Service) Register(method domain.CostMethod, v Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[method] = v
}

func (s *Service) provider(method domain.CostMethod) (Validator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.providers[method]
	return v, ok
}

// ValidateAddress checks addr with the given carrier, or the configured default validation
// carrier when carrierID is nil.
func (s *Service) ValidateAddress(ctx context.Context, addr domain.Address, carrierID *int64) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	var carrier *domain.Carrier
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		id := carrierID
		if id == nil {
			cfg, err := tx.GetCarrierConfig(ctx)
			if err != nil {
				return err
			}
			id = cfg.DefaultValidationCarrierID
		}
		if id == nil {
			return fmt.Errorf("%w: no carrier given and no default validation carrier configured", apperr.ErrMissingConfiguration)
		}

		c, err := tx.GetCarrier(ctx, *id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, *id)
		}
		carrier = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if field := addr.MissingField(); field != "" {
		return nil, fmt.Errorf("%w: incomplete address, %s is required", apperr.ErrInvalid, field)
	}

	v, ok := s.provider(carrier.CostMethod)
	if !ok {
		return nil, fmt.Errorf("%w: address validation for cost method %q", apperr.ErrFeatureUnavailable, carrier.CostMethod)
	}

	res, err := v.ValidateAddress(ctx, *carrier, addr)
	if err != nil {
		return nil, fmt.Errorf("validate address with %q: %w", carrier.Name, err)
	}
	if res == nil {
		res = &Result{}
	}

	s.logger.Debug("address validated",
		logx.Event("address_validated"),
		logx.Int64("carrier_id", carrier.ID),
		logx.Bool("exact", res.Exact),
		logx.Int("suggestions", len(res.Suggestions)),
	)
	return res, nil
}
