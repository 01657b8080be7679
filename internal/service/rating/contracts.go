//go:generate mockgen -source=contracts.go -destination=rating_mocks_test.go -package=rating_test

package rating

import (
	"context"

	"shipping-carrier-service/internal/domain"
)

// Strategy quotes one carrier for a shippable entity.
type Strategy interface {
	Rates(ctx context.Context, entity domain.Shippable, carrier domain.Carrier, req Request) ([]domain.RateOffer, error)
}

// CarrierReader loads carriers to quote.
type CarrierReader interface {
	GetCarrier(ctx context.Context, id int64) (*domain.Carrier, error)
	ListCarriers(ctx context.Context) ([]domain.Carrier, error)
}
