package rating

import (
	"context"
	"fmt"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
)

// ProductPrice quotes the list price of the carrier product in the company currency.
type ProductPrice struct {
	companyCurrency string
}

// NewProductPrice creates the flat "product" strategy.
func NewProductPrice(companyCurrency string) *ProductPrice {
	return &ProductPrice{companyCurrency: companyCurrency}
}

// Rates implements Strategy. Service and box type do not affect a flat price; the requested
// service is carried on the offer.
func (s *ProductPrice) Rates(_ context.Context, _ domain.Shippable, c domain.Carrier, req Request) ([]domain.RateOffer, error) {
	if c.Product == nil {
		return nil, fmt.Errorf("%w: carrier %q has no carrier product", apperr.ErrMissingConfiguration, c.Name)
	}
	return []domain.RateOffer{{
		DisplayName:  c.Name,
		CarrierID:    c.ID,
		ServiceID:    copyID(req.ServiceID),
		Cost:         c.Product.ListPrice,
		CostCurrency: s.companyCurrency,
	}}, nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
