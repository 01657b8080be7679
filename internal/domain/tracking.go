package domain

import (
	"fmt"
	"strconv"
	"strings"

	"shipping-carrier-service/internal/apperr"
)

// TrackingState is the delivery progress of a tracking number.
type TrackingState string

// Tracking states
const (
	TrackingWaiting             TrackingState = "waiting"
	TrackingInTransit           TrackingState = "in_transit"
	TrackingDelivered           TrackingState = "delivered"
	TrackingFailure             TrackingState = "failure"
	TrackingReturned            TrackingState = "returned"
	TrackingCancelled           TrackingState = "cancelled"
	TrackingPendingCancellation TrackingState = "pending_cancellation"
)

var allowedTrackingStates = [...]TrackingState{
	TrackingWaiting, TrackingInTransit, TrackingDelivered, TrackingFailure,
	TrackingReturned, TrackingCancelled, TrackingPendingCancellation,
}

// RefreshableStates are polled by the periodic sweep; the rest are stable.
var RefreshableStates = []TrackingState{
	TrackingPendingCancellation, TrackingFailure, TrackingWaiting, TrackingInTransit,
}

// Valid checks if the TrackingState is known.
func (s TrackingState) Valid() bool {
	for _, v := range allowedTrackingStates {
		if s == v {
			return true
		}
	}
	return false
}

// Refreshable reports whether the sweep polls numbers in this state.
func (s TrackingState) Refreshable() bool {
	for _, v := range RefreshableStates {
		if s == v {
			return true
		}
	}
	return false
}

// Origin is what a tracking number was issued for: a ShipmentOrigin or a PackageOrigin.
type Origin interface {
	origin()
	String() string
}

// ShipmentOrigin points at a whole shipment.
type ShipmentOrigin struct{ ShipmentID int64 }

// PackageOrigin points at a single package.
type PackageOrigin struct{ PackageID int64 }

func (ShipmentOrigin) origin() {}
func (PackageOrigin) origin()  {}

func (o ShipmentOrigin) String() string { return "shipment," + strconv.FormatInt(o.ShipmentID, 10) }
func (o PackageOrigin) String() string  { return "package," + strconv.FormatInt(o.PackageID, 10) }

// ParseOrigin decodes the "kind,id" form produced by Origin.String.
func ParseOrigin(s string) (Origin, error) {
	kind, rawID, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("%w: origin %q", apperr.ErrInvalid, s)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: origin id %q", apperr.ErrInvalid, rawID)
	}
	switch kind {
	case "shipment":
		return ShipmentOrigin{ShipmentID: id}, nil
	case "package":
		return PackageOrigin{PackageID: id}, nil
	default:
		return nil, fmt.Errorf("%w: origin kind %q", apperr.ErrInvalid, kind)
	}
}

// TrackingNumber is a carrier-issued tracking identifier.
type TrackingNumber struct {
	ID        int64
	Number    string
	CarrierID int64
	Origin    Origin
	// IsMaster marks a shipment-level consolidated number.
	IsMaster bool
	URL      string
	State    TrackingState
}

// Cancel forces the state to cancelled regardless of the current state.
func (t *TrackingNumber) Cancel() {
	t.State = TrackingCancelled
}

// Active reports whether the number is still in use.
func (t TrackingNumber) Active() bool { return t.State != TrackingCancelled }
