package kafka

import (
	"errors"
	"strings"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/service/tracking"
)

// TrackingEventDTO is a carrier status push as published on the tracking topic.
type TrackingEventDTO struct {
	TrackingNumber string `json:"tracking_number"`
	CarrierID      int64  `json:"carrier_id"`
	State          string `json:"state"`
	TrackingURL    string `json:"tracking_url,omitempty"`
}

// TrackingEvent is a decoded status push.
type TrackingEvent struct {
	CarrierID int64
	Number    string
	Update    tracking.Update
}

// ToDomain validates dto. Malformed events are permanent errors.
func ToDomain(dto TrackingEventDTO) (TrackingEvent, error) {
	ev := TrackingEvent{
		CarrierID: dto.CarrierID,
		Number:    strings.TrimSpace(dto.TrackingNumber),
		Update: tracking.Update{
			State: domain.TrackingState(strings.ToLower(strings.TrimSpace(dto.State))),
			URL:   strings.TrimSpace(dto.TrackingURL),
		},
	}
	switch {
	case ev.Number == "":
		return TrackingEvent{}, Permanent(errors.New("empty tracking_number"))
	case ev.CarrierID <= 0:
		return TrackingEvent{}, Permanent(errors.New("missing carrier_id"))
	case !ev.Update.State.Valid():
		return TrackingEvent{}, Permanent(errors.New("unknown state " + dto.State))
	}
	return ev, nil
}
