package kafka

import (
	"context"
	"errors"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/service/tracking"
)

type updateApplier interface {
	ApplyUpdate(ctx context.Context, carrierID int64, number string, upd tracking.Update) (bool, error)
}

// TrackingHandler applies events to the tracking numbers they name. Events for numbers
// this system never issued are skipped.
func TrackingHandler(svc updateApplier, logger logx.Logger) HandleFunc {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(ctx context.Context, ev TrackingEvent) error {
		applied, err := svc.ApplyUpdate(ctx, ev.CarrierID, ev.Number, ev.Update)
		if errors.Is(err, apperr.ErrInvalid) {
			return Permanent(err)
		}
		if err != nil {
			return err
		}
		if !applied {
			logger.Debug("tracking event for unknown number",
				logx.Event("tracking_event_skipped"),
				logx.Int64("carrier_id", ev.CarrierID),
				logx.String("tracking_number", ev.Number),
			)
		}
		return nil
	}
}
