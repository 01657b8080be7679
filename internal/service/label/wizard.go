package label

import (
	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/domain"
)

// Step is a label wizard state.
type Step string

// Wizard steps
const (
	StepStart      Step = "start"
	StepSelectRate Step = "select_rate"
	StepGenerate   Step = "generate"
	StepEnd        Step = "end"
)

// Selection is what the user picks on the start step. Nil fields keep the current value.
type Selection struct {
	CarrierID      *int64           `json:"carrier_id,omitempty"`
	ServiceID      *int64           `json:"service_id,omitempty"`
	BoxTypeID      *int64           `json:"box_type_id,omitempty"`
	OverrideWeight *decimal.Decimal `json:"override_weight,omitempty"`
	WeightUnit     string           `json:"weight_unit,omitempty"`
}

// Wizard is the persisted session of one label generation run.
type Wizard struct {
	ID         string `json:"id"`
	ShipmentID int64  `json:"shipment_id"`
	Step       Step   `json:"step"`

	CarrierID      *int64          `json:"carrier_id,omitempty"`
	ServiceID      *int64          `json:"service_id,omitempty"`
	BoxTypeID      *int64          `json:"box_type_id,omitempty"`
	OverrideWeight decimal.Decimal `json:"override_weight"`
	// PreviousWeight is the packages' override total in WeightUnit, recomputed by Next.
	PreviousWeight decimal.Decimal `json:"previous_weight"`
	WeightUnit     string          `json:"weight_unit"`

	Rates []domain.RateOffer `json:"rates,omitempty"`

	TrackingNumberID *int64          `json:"tracking_number_id,omitempty"`
	TrackingNumber   string          `json:"tracking_number,omitempty"`
	Cost             decimal.Decimal `json:"cost"`
	CostCurrency     string          `json:"cost_currency,omitempty"`
	AttachmentIDs    []int64         `json:"attachment_ids,omitempty"`
}

func (w *Wizard) apply(sel Selection) {
	if sel.CarrierID != nil {
		w.CarrierID = sel.CarrierID
	}
	if sel.ServiceID != nil {
		w.ServiceID = sel.ServiceID
	}
	if sel.BoxTypeID != nil {
		w.BoxTypeID = sel.BoxTypeID
	}
	if sel.OverrideWeight != nil {
		w.OverrideWeight = *sel.OverrideWeight
	}
	if sel.WeightUnit != "" {
		w.WeightUnit = sel.WeightUnit
	}
}
