// Package packaging keeps a shipment's packages consistent with its outgoing moves.
package packaging

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
	"shipping-carrier-service/internal/uom"
)

// Reconciler works inside the caller's transaction and keeps s.Packages in sync with what it writes.
type Reconciler struct {
	conv   uom.Converter
	logger logx.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(conv uom.Converter, logger logx.Logger) *Reconciler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Reconciler{conv: conv, logger: logger}
}

// EnsurePackaged creates one package holding every outgoing move when the shipment has none,
// otherwise checks that the packages hold each outgoing move exactly once.
func (r *Reconciler) EnsurePackaged(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, boxTypeID *int64) error {
	if len(s.Packages) > 0 {
		return CheckComplete(s)
	}

	p := domain.Package{
		ShipmentID: s.ID,
		Code:       fmt.Sprintf("%s-1", s.Label()),
		BoxTypeID:  copyID(boxTypeID),
		MoveIDs:    s.MoveIDs(),
	}
	if err := tx.InsertPackage(ctx, &p); err != nil {
		return fmt.Errorf("create package for %s: %w", s.Label(), err)
	}
	s.Packages = []domain.Package{p}

	r.logger.Info("package created",
		logx.Event("package_created"),
		logx.Int64("shipment_id", s.ID),
		logx.Int64("package_id", p.ID),
		logx.Int("moves", len(p.MoveIDs)),
	)
	return nil
}

// CheckComplete verifies that the union of package moves is the shipment's outgoing moves,
// with no move packed twice.
func CheckComplete(s *domain.Shipment) error {
	outgoing := make(map[int64]bool, len(s.OutgoingMoves))
	for _, m := range s.OutgoingMoves {
		outgoing[m.ID] = false
	}

	packed := 0
	for _, p := range s.Packages {
		for _, id := range p.MoveIDs {
			seen, ok := outgoing[id]
			if !ok {
				return fmt.Errorf("%w: %s: package %d holds move %d which is not outgoing",
					apperr.ErrIncompletePackaging, s.Label(), p.ID, id)
			}
			if seen {
				return fmt.Errorf("%w: %s: move %d is packed more than once",
					apperr.ErrIncompletePackaging, s.Label(), id)
			}
			outgoing[id] = true
			packed++
		}
	}
	if packed != len(s.OutgoingMoves) {
		return fmt.Errorf("%w: %s: %d of %d moves are packed",
			apperr.ErrIncompletePackaging, s.Label(), packed, len(s.OutgoingMoves))
	}
	return nil
}

// OverrideTotal sums the per-package override weights in unit.
func (r *Reconciler) OverrideTotal(s *domain.Shipment, unit string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.Packages {
		if !p.HasOverride() {
			continue
		}
		if err := p.Validate(); err != nil {
			return decimal.Zero, err
		}
		w, err := r.conv.Convert(p.OverrideWeight, p.OverrideWeightUnit, unit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("package %d override: %w", p.ID, err)
		}
		total = total.Add(w)
	}
	return total, nil
}

// RedistributeOverrideWeight splits requested evenly over the packages when it differs from
// previous. A zero request or an unchanged total leaves the packages untouched.
func (r *Reconciler) RedistributeOverrideWeight(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment,
	requested, previous decimal.Decimal, unit string) error {
	if requested.IsZero() || requested.Equal(previous) || len(s.Packages) == 0 {
		return nil
	}
	if requested.IsNegative() {
		return fmt.Errorf("%w: override weight %s is negative", apperr.ErrInvalid, requested)
	}
	if unit == "" {
		return fmt.Errorf("%w: override weight unit is required", apperr.ErrInvalid)
	}

	share := requested.Div(decimal.NewFromInt(int64(len(s.Packages))))
	for i := range s.Packages {
		s.Packages[i].OverrideWeight = share
		s.Packages[i].OverrideWeightUnit = unit
		if err := tx.UpdatePackage(ctx, s.Packages[i]); err != nil {
			return fmt.Errorf("update package %d: %w", s.Packages[i].ID, err)
		}
	}

	r.logger.Info("override weight redistributed",
		logx.Event("override_weight_redistributed"),
		logx.Int64("shipment_id", s.ID),
		logx.Decimal("requested", requested),
		logx.Decimal("previous", previous),
		logx.Decimal("share", share),
		logx.String("unit", unit),
	)
	return nil
}

// ReassignBoxType moves every package onto boxTypeID. A nil box type keeps the current ones.
func (r *Reconciler) ReassignBoxType(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, boxTypeID *int64) error {
	if boxTypeID == nil {
		return nil
	}
	for i := range s.Packages {
		if s.Packages[i].SameBoxType(boxTypeID) {
			continue
		}
		s.Packages[i].BoxTypeID = copyID(boxTypeID)
		if err := tx.UpdatePackage(ctx, s.Packages[i]); err != nil {
			return fmt.Errorf("update package %d: %w", s.Packages[i].ID, err)
		}
	}
	return nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
