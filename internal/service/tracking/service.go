// Package tracking drives the tracking number lifecycle: cancellation, refreshes and the periodic sweep.
package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
)

// Refresh sources
const (
	SourceSweep  = "sweep"
	SourceManual = "manual"
	SourceEvent  = "event"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Service owns tracking number state transitions.
type Service struct {
	repo             shippingtx.Runner
	operationTimeout time.Duration
	logger           logx.Logger
	refreshes        counterVec

	mu         sync.RWMutex
	refreshers map[domain.CostMethod]Refresher
}

// NewService creates a tracking Service. timeout bounds each refresh call and each transaction.
func NewService(r shippingtx.Runner, timeout time.Duration, logger logx.Logger, refreshes counterVec) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		operationTimeout: timeout,
		logger:           logger,
		refreshes:        refreshes,
		refreshers:       map[domain.CostMethod]Refresher{},
	}
}

// Register installs the refresher for a carrier cost method.
func (s *Service) Register(method domain.CostMethod, r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshers[method] = r
}

func (s *Service) refresher(method domain.CostMethod) (Refresher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refreshers[method]
	return r, ok
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func (s *Service) count(source, outcome string) {
	if s.refreshes != nil {
		s.refreshes.WithLabelValues(source, outcome).Inc()
	}
}

func loadTracking(ctx context.Context, tx shippingtx.Repository, id int64) (*domain.TrackingNumber, error) {
	tn, err := tx.GetTrackingNumber(ctx, id)
	if err != nil {
		return nil, err
	}
	if tn == nil {
		return nil, fmt.Errorf("%w: tracking number %d", apperr.ErrNotFound, id)
	}
	return tn, nil
}

// Get returns a tracking number.
func (s *Service) Get(ctx context.Context, id int64) (*domain.TrackingNumber, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.TrackingNumber
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		var err error
		out, err = loadTracking(ctx, tx, id)
		return err
	})
	return out, err
}

// Cancel forces the tracking number to cancelled whatever its state.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.TrackingNumber, error) {
	return s.cancel(ctx, id, false)
}

// CancelAction is the user-facing cancel: it refuses numbers that are already cancelled.
func (s *Service) CancelAction(ctx context.Context, id int64) (*domain.TrackingNumber, error) {
	return s.cancel(ctx, id, true)
}

func (s *Service) cancel(ctx context.Context, id int64, guard bool) (*domain.TrackingNumber, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.TrackingNumber
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		tn, err := loadTracking(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard && !tn.Active() {
			return fmt.Errorf("%w: tracking number %s is already cancelled", apperr.ErrInvalidState, tn.Number)
		}
		tn.Cancel()
		if err := tx.UpdateTrackingNumber(ctx, *tn); err != nil {
			return err
		}
		out = tn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tracking number cancelled",
		logx.Event("tracking_cancelled"),
		logx.Int64("tracking_id", out.ID),
		logx.String("number", out.Number),
	)
	return out, nil
}

// Refresh asks the carrier's refresher for news on one tracking number. Carriers without a
// refresher leave the number untouched.
func (s *Service) Refresh(ctx context.Context, id int64) (*domain.TrackingNumber, error) {
	return s.refresh(ctx, id, SourceManual)
}

func (s *Service) refresh(ctx context.Context, id int64, source string) (_ *domain.TrackingNumber, err error) {
	defer func() {
		if err != nil {
			s.count(source, "failed")
		}
	}()

	var (
		tn      *domain.TrackingNumber
		carrier *domain.Carrier
	)
	txCtx, cancel := s.withTimeout(ctx)
	err = s.repo.WithTx(txCtx, func(tx shippingtx.Repository) error {
		var err error
		if tn, err = loadTracking(txCtx, tx, id); err != nil {
			return err
		}
		if carrier, err = tx.GetCarrier(txCtx, tn.CarrierID); err != nil {
			return err
		}
		if carrier == nil {
			return fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, tn.CarrierID)
		}
		return nil
	})
	cancel()
	if err != nil {
		return nil, err
	}

	r, ok := s.refresher(carrier.CostMethod)
	if !ok {
		s.count(source, "skipped")
		return tn, nil
	}

	callCtx, cancel := s.withTimeout(ctx)
	upd, err := r.Refresh(callCtx, *tn)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("refresh tracking number %s: %w", tn.Number, err)
	}
	if upd == nil {
		s.count(source, "unchanged")
		return tn, nil
	}

	out, err := s.store(ctx, tn.ID, *upd)
	if err != nil {
		return nil, err
	}
	s.count(source, "updated")
	return out, nil
}

// store overwrites state and URL. No transition check is made: the carrier is authoritative.
func (s *Service) store(ctx context.Context, id int64, upd Update) (*domain.TrackingNumber, error) {
	if !upd.State.Valid() {
		return nil, fmt.Errorf("%w: tracking state %q", apperr.ErrInvalid, upd.State)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.TrackingNumber
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		tn, err := loadTracking(ctx, tx, id)
		if err != nil {
			return err
		}
		from := tn.State
		tn.State = upd.State
		if upd.URL != "" {
			tn.URL = upd.URL
		}
		if err := tx.UpdateTrackingNumber(ctx, *tn); err != nil {
			return err
		}
		out = tn
		s.logger.Info("tracking number updated",
			logx.Event("tracking_updated"),
			logx.Int64("tracking_id", tn.ID),
			logx.String("from", string(from)),
			logx.String("to", string(tn.State)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyUpdate overwrites the state of the number a carrier pushed an event for.
// Unknown numbers are reported as not applied, without error.
func (s *Service) ApplyUpdate(ctx context.Context, carrierID int64, number string, upd Update) (bool, error) {
	if !upd.State.Valid() {
		s.count(SourceEvent, "failed")
		return false, fmt.Errorf("%w: tracking state %q", apperr.ErrInvalid, upd.State)
	}

	var id int64
	lookupCtx, cancel := s.withTimeout(ctx)
	err := s.repo.WithTx(lookupCtx, func(tx shippingtx.Repository) error {
		tn, err := tx.FindTrackingNumber(lookupCtx, carrierID, number)
		if err != nil {
			return err
		}
		if tn != nil {
			id = tn.ID
		}
		return nil
	})
	cancel()
	if err != nil {
		s.count(SourceEvent, "failed")
		return false, err
	}
	if id == 0 {
		s.count(SourceEvent, "skipped")
		return false, nil
	}

	if _, err := s.store(ctx, id, upd); err != nil {
		s.count(SourceEvent, "failed")
		return false, err
	}
	s.count(SourceEvent, "updated")
	return true, nil
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Selected int
	Failed   int
}

// Sweep refreshes every tracking number in a refreshable state. Each number is refreshed
// on its own: a failure or panic is logged and the sweep moves on.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var numbers []domain.TrackingNumber
	listCtx, cancel := s.withTimeout(ctx)
	err := s.repo.WithTx(listCtx, func(tx shippingtx.Repository) error {
		var err error
		numbers, err = tx.ListTrackingNumbersByState(listCtx, domain.RefreshableStates)
		return err
	})
	cancel()
	if err != nil {
		return SweepResult{}, fmt.Errorf("list refreshable tracking numbers: %w", err)
	}

	res := SweepResult{Selected: len(numbers)}
	for _, tn := range numbers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.sweepOne(ctx, tn); err != nil {
			res.Failed++
			s.logger.Error("tracking refresh failed",
				logx.Event("tracking_refresh_failed"),
				logx.Int64("tracking_id", tn.ID),
				logx.String("number", tn.Number),
				logx.Err(err),
			)
		}
	}

	s.logger.Info("tracking sweep finished",
		logx.Event("tracking_sweep_finished"),
		logx.Int("selected", res.Selected),
		logx.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Service) sweepOne(ctx context.Context, tn domain.TrackingNumber) (err error) {
	defer func() {
		if p := recover(); p != nil {
			s.count(SourceSweep, "failed")
			err = fmt.Errorf("refresh panicked: %v", p)
		}
	}()
	_, err = s.refresh(ctx, tn.ID, SourceSweep)
	return err
}

// PackageTrackingNumber returns the first active tracking number issued for the package.
func (s *Service) PackageTrackingNumber(ctx context.Context, packageID int64) (*domain.TrackingNumber, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.TrackingNumber
	err := s.repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		numbers, err := tx.ListTrackingNumbersByOrigin(ctx, []domain.Origin{domain.PackageOrigin{PackageID: packageID}})
		if err != nil {
			return err
		}
		for i := range numbers {
			if numbers[i].Active() {
				out = &numbers[i]
				return nil
			}
		}
		return nil
	})
	return out, err
}
