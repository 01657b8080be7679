package shippingtx

import (
	"context"

	"shipping-carrier-service/internal/domain"
)

// Repository is the unit of work seen inside a transaction.
// Getters return (nil, nil) when the row does not exist.
type Repository interface {
	GetCarrier(ctx context.Context, id int64) (*domain.Carrier, error)
	ListCarriers(ctx context.Context) ([]domain.Carrier, error)
	GetCarrierConfig(ctx context.Context) (domain.CarrierConfig, error)

	// GetShipment loads the shipment with its moves and packages and locks it for update.
	GetShipment(ctx context.Context, id int64) (*domain.Shipment, error)
	InsertShipment(ctx context.Context, s *domain.Shipment) error
	UpdateShipmentShipping(ctx context.Context, id int64, sh domain.Shipping) error
	UpdateShipmentState(ctx context.Context, id int64, state domain.ShipmentState) error
	SetShipmentTracking(ctx context.Context, id int64, trackingID *int64) error
	SetShipmentManifest(ctx context.Context, id int64, manifestID *int64) error

	InsertPackage(ctx context.Context, p *domain.Package) error
	UpdatePackage(ctx context.Context, p domain.Package) error
	DeletePackages(ctx context.Context, shipmentID int64) error

	// GetSale loads the sale with its lines and locks it for update.
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	UpdateSaleShipping(ctx context.Context, id int64, sh domain.Shipping) error
	// ReplaceShipmentCostLine removes every shipping cost line of the sale and inserts line.
	ReplaceShipmentCostLine(ctx context.Context, saleID int64, line *domain.SaleLine) error

	GetTrackingNumber(ctx context.Context, id int64) (*domain.TrackingNumber, error)
	FindTrackingNumber(ctx context.Context, carrierID int64, number string) (*domain.TrackingNumber, error)
	InsertTrackingNumber(ctx context.Context, tn *domain.TrackingNumber) error
	UpdateTrackingNumber(ctx context.Context, tn domain.TrackingNumber) error
	ListTrackingNumbersByState(ctx context.Context, states []domain.TrackingState) ([]domain.TrackingNumber, error)
	ListTrackingNumbersByOrigin(ctx context.Context, origins []domain.Origin) ([]domain.TrackingNumber, error)

	InsertAttachment(ctx context.Context, a *domain.Attachment) error

	GetManifest(ctx context.Context, id int64) (*domain.Manifest, error)
	ListOpenManifests(ctx context.Context, carrierID, warehouseID int64) ([]domain.Manifest, error)
	InsertManifest(ctx context.Context, m *domain.Manifest) error
	UpdateManifest(ctx context.Context, m domain.Manifest) error

	InsertCarrierLog(ctx context.Context, l *domain.CarrierLog) error
}

// Runner is a transaction runner.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
