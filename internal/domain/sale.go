package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sale is a sale order.
type Sale struct {
	ID           int64
	Reference    string
	CurrencyCode string
	Shipping
	WeightUnit string
	Lines      []SaleLine
}

// SaleLine is a sale order line. ShipmentCost tags the line carrying the shipping price.
type SaleLine struct {
	ID           int64
	SaleID       int64
	Product      *Product
	Description  string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	ShipmentCost bool
}

// ShippingInfo implements Shippable.
func (s *Sale) ShippingInfo() *Shipping { return &s.Shipping }

// EntityCurrency implements Shippable.
func (s *Sale) EntityCurrency() string { return s.CurrencyCode }

// Label implements Shippable.
func (s *Sale) Label() string {
	if s.Reference != "" {
		return s.Reference
	}
	return fmt.Sprintf("sale %d", s.ID)
}

// ShipmentCostLines returns the lines tagged as shipping cost.
func (s *Sale) ShipmentCostLines() []SaleLine {
	var out []SaleLine
	for _, l := range s.Lines {
		if l.ShipmentCost {
			out = append(out, l)
		}
	}
	return out
}
