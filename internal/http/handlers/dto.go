package handlers

import (
	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/domain"
)

type rateRequest struct {
	CarrierIDs               []int64 `json:"carrier_ids,omitempty"`
	ServiceID                *int64  `json:"service_id,omitempty"`
	BoxTypeID                *int64  `json:"box_type_id,omitempty"`
	Silent                   bool    `json:"silent,omitempty"`
	IgnoreCarrierComputation bool    `json:"ignore_carrier_computation,omitempty"`
}

type shippingDTO struct {
	CarrierID    *int64          `json:"carrier_id"`
	ServiceID    *int64          `json:"service_id"`
	Cost         decimal.Decimal `json:"cost"`
	CostCurrency string          `json:"cost_currency"`
}

type packageDTO struct {
	ID                 int64           `json:"id"`
	Code               string          `json:"code"`
	BoxTypeID          *int64          `json:"box_type_id"`
	MoveIDs            []int64         `json:"move_ids"`
	OverrideWeight     decimal.Decimal `json:"override_weight"`
	OverrideWeightUnit string          `json:"override_weight_unit,omitempty"`
}

type shipmentDTO struct {
	ID               int64                `json:"id"`
	Reference        string               `json:"reference"`
	State            domain.ShipmentState `json:"state"`
	Shipping         shippingDTO          `json:"shipping"`
	TrackingNumberID *int64               `json:"tracking_number_id"`
	ManifestID       *int64               `json:"manifest_id"`
	Packages         []packageDTO         `json:"packages"`
}

type saleLineDTO struct {
	ID           int64           `json:"id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ShipmentCost bool            `json:"shipment_cost"`
}

type saleDTO struct {
	ID           int64         `json:"id"`
	Reference    string        `json:"reference"`
	CurrencyCode string        `json:"currency_code"`
	Shipping     shippingDTO   `json:"shipping"`
	Lines        []saleLineDTO `json:"lines"`
}

type weightDTO struct {
	Weight decimal.Decimal `json:"weight"`
	Unit   string          `json:"unit,omitempty"`
}

type trackingNumberDTO struct {
	ID        int64                `json:"id"`
	Number    string               `json:"number"`
	CarrierID int64                `json:"carrier_id"`
	Origin    string               `json:"origin"`
	IsMaster  bool                 `json:"is_master"`
	URL       string               `json:"url,omitempty"`
	State     domain.TrackingState `json:"state"`
}

type manifestDTO struct {
	ID          int64                `json:"id"`
	CarrierID   int64                `json:"carrier_id"`
	WarehouseID int64                `json:"warehouse_id"`
	State       domain.ManifestState `json:"state"`
	CloseDate   *string              `json:"close_date,omitempty"`
}

type openManifestRequest struct {
	CarrierID   int64 `json:"carrier_id"`
	WarehouseID int64 `json:"warehouse_id"`
}

type addShipmentRequest struct {
	ShipmentID int64 `json:"shipment_id"`
}

type validateAddressRequest struct {
	Address   domain.Address `json:"address"`
	CarrierID *int64         `json:"carrier_id,omitempty"`
}

type generateRequest struct {
	Rate int `json:"rate"`
}

type serviceDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type boxTypeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type carrierDTO struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	CostMethod   domain.CostMethod `json:"cost_method"`
	CurrencyCode string            `json:"currency_code,omitempty"`
	Services     []serviceDTO      `json:"services"`
	BoxTypes     []boxTypeDTO      `json:"box_types"`
}
