package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/ports/shippingtx"
	"shipping-carrier-service/internal/service/rating"
)

type rater interface {
	GetShippingRates(ctx context.Context, r rating.CarrierReader, entity domain.Shippable, req rating.Request) ([]domain.RateOffer, error)
}

type weigher interface {
	ShipmentWeight(s *domain.Shipment, target string) (decimal.Decimal, error)
	SaleWeight(sale *domain.Sale, target string) (decimal.Decimal, error)
}

type carrierLogger interface {
	Add(ctx context.Context, tx shippingtx.Repository, owner domain.Shippable, carrierID int64, text string) (*domain.CarrierLog, error)
}
