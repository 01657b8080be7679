// Package carrierlog persists human-readable carrier interaction logs.
package carrierlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/ports/shippingtx"
)

// Recorder writes carrier logs when the configuration toggle allows it.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: func() time.Time { return time.Now().UTC() }}
}

// Add stores text against a sale or shipment. It returns nil when carrier logs are disabled.
func (r *Recorder) Add(ctx context.Context, tx shippingtx.Repository, owner domain.Shippable, carrierID int64, text string) (*domain.CarrierLog, error) {
	cfg, err := tx.GetCarrierConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.SaveCarrierLogs {
		return nil, nil
	}

	l := &domain.CarrierLog{
		CarrierID: carrierID,
		Log:       strings.TrimSpace(text),
		CreatedAt: r.now(),
	}
	switch o := owner.(type) {
	case *domain.Sale:
		id := o.ID
		l.SaleID = &id
	case *domain.Shipment:
		id := o.ID
		l.ShipmentID = &id
	default:
		return nil, fmt.Errorf("%w: carrier log owner %T", apperr.ErrInvalid, owner)
	}

	if err := tx.InsertCarrierLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
