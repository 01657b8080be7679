package domain

import "github.com/shopspring/decimal"

// Shipping holds the carrier selection and cost shared by sales and shipments.
type Shipping struct {
	CarrierID    *int64
	ServiceID    *int64
	Cost         decimal.Decimal
	CostCurrency string
}

// Shippable is implemented by every entity that can be quoted and carry a chosen rate.
type Shippable interface {
	ShippingInfo() *Shipping
	// EntityCurrency is the currency the applied cost must be expressed in.
	EntityCurrency() string
	// Label identifies the entity in errors and logs.
	Label() string
}
