package handlers

import (
	"time"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/service/rating"
)

func (r rateRequest) toModel() rating.Request {
	return rating.Request{
		CarrierIDs: r.CarrierIDs,
		ServiceID:  r.ServiceID,
		BoxTypeID:  r.BoxTypeID,
		Options: rating.Options{
			Silent:                   r.Silent,
			IgnoreCarrierComputation: r.IgnoreCarrierComputation,
		},
	}
}

func shippingToResponse(s domain.Shipping) shippingDTO {
	return shippingDTO{
		CarrierID:    s.CarrierID,
		ServiceID:    s.ServiceID,
		Cost:         s.Cost,
		CostCurrency: s.CostCurrency,
	}
}

func shipmentToResponse(s *domain.Shipment) shipmentDTO {
	out := shipmentDTO{
		ID:               s.ID,
		Reference:        s.Reference,
		State:            s.State,
		Shipping:         shippingToResponse(s.Shipping),
		TrackingNumberID: s.TrackingNumberID,
		ManifestID:       s.ManifestID,
		Packages:         make([]packageDTO, 0, len(s.Packages)),
	}
	for _, p := range s.Packages {
		out.Packages = append(out.Packages, packageDTO{
			ID:                 p.ID,
			Code:               p.Code,
			BoxTypeID:          p.BoxTypeID,
			MoveIDs:            p.MoveIDs,
			OverrideWeight:     p.OverrideWeight,
			OverrideWeightUnit: p.OverrideWeightUnit,
		})
	}
	return out
}

func saleToResponse(s *domain.Sale) saleDTO {
	out := saleDTO{
		ID:           s.ID,
		Reference:    s.Reference,
		CurrencyCode: s.CurrencyCode,
		Shipping:     shippingToResponse(s.Shipping),
		Lines:        make([]saleLineDTO, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, saleLineDTO{
			ID:           l.ID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
			UnitPrice:    l.UnitPrice,
			ShipmentCost: l.ShipmentCost,
		})
	}
	return out
}

func trackingToResponse(tn *domain.TrackingNumber) trackingNumberDTO {
	out := trackingNumberDTO{
		ID:        tn.ID,
		Number:    tn.Number,
		CarrierID: tn.CarrierID,
		IsMaster:  tn.IsMaster,
		URL:       tn.URL,
		State:     tn.State,
	}
	if tn.Origin != nil {
		out.Origin = tn.Origin.String()
	}
	return out
}

func manifestToResponse(m *domain.Manifest) manifestDTO {
	out := manifestDTO{
		ID:          m.ID,
		CarrierID:   m.CarrierID,
		WarehouseID: m.WarehouseID,
		State:       m.State,
	}
	if m.CloseDate != nil {
		d := m.CloseDate.UTC().Format(time.RFC3339)
		out.CloseDate = &d
	}
	return out
}

func carrierToResponse(c domain.Carrier) carrierDTO {
	out := carrierDTO{
		ID:           c.ID,
		Name:         c.Name,
		CostMethod:   c.CostMethod,
		CurrencyCode: c.CurrencyCode,
		Services:     make([]serviceDTO, 0, len(c.Services)),
		BoxTypes:     make([]boxTypeDTO, 0, len(c.BoxTypes)),
	}
	for _, s := range c.Services {
		out.Services = append(out.Services, serviceDTO{ID: s.ID, Name: s.Name, Code: s.Code})
	}
	for _, b := range c.BoxTypes {
		out.BoxTypes = append(out.BoxTypes, boxTypeDTO{ID: b.ID, Name: b.Name, Code: b.Code})
	}
	return out
}

func carriersToResponse(list []domain.Carrier) []carrierDTO {
	out := make([]carrierDTO, 0, len(list))
	for _, c := range list {
		out = append(out, carrierToResponse(c))
	}
	return out
}
