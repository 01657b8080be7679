package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/service/address"
	"shipping-carrier-service/internal/service/label"
	"shipping-carrier-service/internal/service/rating"
)

type shippingUsecase interface {
	QuoteShipment(ctx context.Context, id int64, req rating.Request) ([]domain.RateOffer, error)
	QuoteSale(ctx context.Context, id int64, req rating.Request) ([]domain.RateOffer, error)
	ApplyShipmentRate(ctx context.Context, id int64, rate domain.RateOffer) (*domain.Shipment, error)
	ApplySaleRate(ctx context.Context, id int64, rate domain.RateOffer) (*domain.Sale, error)
	CopyShipment(ctx context.Context, id int64) (*domain.Shipment, error)
	CancelShipment(ctx context.Context, id int64) error
	ShipmentWeight(ctx context.Context, id int64, unit string) (decimal.Decimal, error)
	SaleWeight(ctx context.Context, id int64, unit string) (decimal.Decimal, error)
}

type labelUsecase interface {
	Start(ctx context.Context, shipmentID int64) (*label.Wizard, error)
	Next(ctx context.Context, id string, sel label.Selection) (*label.Wizard, error)
	Generate(ctx context.Context, id string, choice int) (*label.Wizard, error)
	Get(ctx context.Context, id string) (*label.Wizard, error)
	End(ctx context.Context, id string) error
}

type trackingUsecase interface {
	Get(ctx context.Context, id int64) (*domain.TrackingNumber, error)
	CancelAction(ctx context.Context, id int64) (*domain.TrackingNumber, error)
	Refresh(ctx context.Context, id int64) (*domain.TrackingNumber, error)
	PackageTrackingNumber(ctx context.Context, packageID int64) (*domain.TrackingNumber, error)
}

type manifestUsecase interface {
	GetOrOpen(ctx context.Context, carrierID, warehouseID int64) (*domain.Manifest, error)
	Get(ctx context.Context, id int64) (*domain.Manifest, error)
	Close(ctx context.Context, id int64) (*domain.Manifest, error)
	AddShipment(ctx context.Context, manifestID, shipmentID int64) error
}

type addressUsecase interface {
	ValidateAddress(ctx context.Context, addr domain.Address, carrierID *int64) (*address.Result, error)
}

type carrierReader interface {
	Get(ctx context.Context, id int64) (*domain.Carrier, error)
	List(ctx context.Context) ([]domain.Carrier, error)
}
