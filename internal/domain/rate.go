package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateOffer is a quoted shipping price for one carrier/service combination.
// Cost is expressed in CostCurrency and must be converted before it is compared
// with or stored against another currency.
type RateOffer struct {
	DisplayName  string          `json:"display_name"`
	CarrierID    int64           `json:"carrier_id"`
	ServiceID    *int64          `json:"service_id,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	CostCurrency string          `json:"cost_currency"`
}

// SortByCost orders offers by ascending cost; ties keep their relative order.
func SortByCost(offers []RateOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Cost.LessThan(offers[j].Cost)
	})
}
