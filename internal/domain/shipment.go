package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// ShipmentState is the workflow state of an outgoing shipment.
type ShipmentState string

// Shipment states
const (
	ShipmentDraft    ShipmentState = "draft"
	ShipmentWaiting  ShipmentState = "waiting"
	ShipmentAssigned ShipmentState = "assigned"
	ShipmentPacked   ShipmentState = "packed"
	ShipmentDone     ShipmentState = "done"
	ShipmentCancel   ShipmentState = "cancel"
)

// Labelable reports whether labels may be generated in this state.
func (s ShipmentState) Labelable() bool {
	return s == ShipmentPacked || s == ShipmentDone
}

// Move is an outgoing stock move of a shipment.
type Move struct {
	ID       int64
	Product  *Product
	Quantity decimal.Decimal
	Unit     string
}

// Shipment is an outgoing customer shipment.
type Shipment struct {
	ID              int64
	Reference       string
	State           ShipmentState
	Warehouse       *Warehouse
	DeliveryAddress *Address
	Shipping
	TrackingNumberID *int64
	ManifestID       *int64
	// OverrideWeight, when non-zero, replaces the computed package weight.
	OverrideWeight decimal.Decimal
	WeightUnit     string
	Instructions   string
	OutgoingMoves  []Move
	Packages       []Package
}

// ShippingInfo implements Shippable.
func (s *Shipment) ShippingInfo() *Shipping { return &s.Shipping }

// EntityCurrency implements Shippable.
func (s *Shipment) EntityCurrency() string { return s.CostCurrency }

// Label implements Shippable.
func (s *Shipment) Label() string {
	if s.Reference != "" {
		return s.Reference
	}
	return fmt.Sprintf("shipment %d", s.ID)
}

// HasTracking reports whether a tracking number is attached.
func (s *Shipment) HasTracking() bool { return s.TrackingNumberID != nil }

// AllowLabelGeneration checks the label preconditions.
func (s *Shipment) AllowLabelGeneration() error {
	if !s.State.Labelable() {
		return fmt.Errorf("%w: labels can only be generated for packed or done shipments, %s is %s",
			apperr.ErrInvalidState, s.Label(), s.State)
	}
	if s.HasTracking() {
		return fmt.Errorf("%w: tracking number for %s", apperr.ErrAlreadyPresent, s.Label())
	}
	return nil
}

// ShipFromAddress is the warehouse address. When silent, a missing address yields nil.
func (s *Shipment) ShipFromAddress(silent bool) (*Address, error) {
	if s.Warehouse != nil && s.Warehouse.Address != nil {
		return s.Warehouse.Address, nil
	}
	if silent {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: warehouse address is missing", apperr.ErrMissingConfiguration)
}

// IsInternational reports whether origin and destination countries differ.
func (s *Shipment) IsInternational() bool {
	from, _ := s.ShipFromAddress(true)
	if from == nil || s.DeliveryAddress == nil {
		return false
	}
	return from.Country != "" && s.DeliveryAddress.Country != "" && from.Country != s.DeliveryAddress.Country
}

// Move returns the outgoing move with the given id.
func (s *Shipment) Move(id int64) (Move, bool) {
	for _, m := range s.OutgoingMoves {
		if m.ID == id {
			return m, true
		}
	}
	return Move{}, false
}

// PackageMoves resolves the moves owned by p.
func (s *Shipment) PackageMoves(p Package) []Move {
	out := make([]Move, 0, len(p.MoveIDs))
	for _, id := range p.MoveIDs {
		if m, ok := s.Move(id); ok {
			out = append(out, m)
		}
	}
	return out
}

// MoveIDs lists the ids of all outgoing moves.
func (s *Shipment) MoveIDs() []int64 {
	ids := make([]int64, 0, len(s.OutgoingMoves))
	for _, m := range s.OutgoingMoves {
		ids = append(ids, m.ID)
	}
	return ids
}

// Copy duplicates the shipment. Copies never carry a tracking number, a manifest
// or packages, so every copy starts untracked.
func (s *Shipment) Copy() *Shipment {
	cp := *s
	cp.ID = 0
	cp.State = ShipmentDraft
	cp.TrackingNumberID = nil
	cp.ManifestID = nil
	cp.Packages = nil
	cp.OutgoingMoves = make([]Move, len(s.OutgoingMoves))
	for i, m := range s.OutgoingMoves {
		m.ID = 0
		cp.OutgoingMoves[i] = m
	}
	if s.CarrierID != nil {
		id := *s.CarrierID
		cp.CarrierID = &id
	}
	if s.ServiceID != nil {
		id := *s.ServiceID
		cp.ServiceID = &id
	}
	return &cp
}
