package domain

import (
	"fmt"
	"time"

	"shipping-carrier-service/internal/apperr"
)

// ManifestState is open or closed.
type ManifestState string

// Manifest states
const (
	ManifestOpen   ManifestState = "open"
	ManifestClosed ManifestState = "closed"
)

// Manifest groups tracked shipments of one carrier and warehouse for handoff.
type Manifest struct {
	ID          int64
	CarrierID   int64
	WarehouseID int64
	State       ManifestState
	CloseDate   *time.Time
}

// Close moves an open manifest to closed.
func (m *Manifest) Close(now time.Time) error {
	if m.State != ManifestOpen {
		return fmt.Errorf("%w: manifest %d is %s", apperr.ErrInvalidState, m.ID, m.State)
	}
	m.State = ManifestClosed
	m.CloseDate = &now
	return nil
}

// Accepts checks whether the shipment may be added to the manifest.
func (m *Manifest) Accepts(s *Shipment) error {
	switch {
	case m.State != ManifestOpen:
		return fmt.Errorf("%w: manifest %d is closed", apperr.ErrInvalidState, m.ID)
	case s.CarrierID == nil || *s.CarrierID != m.CarrierID:
		return fmt.Errorf("%w: %s is not shipped with the manifest carrier", apperr.ErrInvalid, s.Label())
	case s.Warehouse == nil || s.Warehouse.ID != m.WarehouseID:
		return fmt.Errorf("%w: %s is not shipped from the manifest warehouse", apperr.ErrInvalid, s.Label())
	case !s.State.Labelable():
		return fmt.Errorf("%w: %s is %s", apperr.ErrInvalidState, s.Label(), s.State)
	case !s.HasTracking():
		return fmt.Errorf("%w: %s has no tracking number", apperr.ErrInvalid, s.Label())
	case s.ManifestID != nil && *s.ManifestID != m.ID:
		return fmt.Errorf("%w: %s is already on manifest %d", apperr.ErrConflict, s.Label(), *s.ManifestID)
	}
	return nil
}
