package handlers

import (
	"net/http"
	"strconv"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
)

// ShippingHandler serves rating, rate application, copy, cancel and weight endpoints.
type ShippingHandler struct {
	logger logx.Logger
	uc     shippingUsecase
}

// NewShippingHandler wires a shipping usecase into HTTP handlers.
func NewShippingHandler(logger logx.Logger, uc shippingUsecase) *ShippingHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ShippingHandler{logger: logger, uc: uc}
}

func (h *ShippingHandler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// QuoteShipment handles POST /shipments/{id}/rates.
func (h *ShippingHandler) QuoteShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !decodeJSON(h.logger, w, r, &req, true) {
		return
	}

	rates, err := h.uc.QuoteShipment(r.Context(), id, req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, nonNil(rates))
}

// QuoteSale handles POST /sales/{id}/rates.
func (h *ShippingHandler) QuoteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !decodeJSON(h.logger, w, r, &req, true) {
		return
	}

	rates, err := h.uc.QuoteSale(r.Context(), id, req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, nonNil(rates))
}

func nonNil(rates []domain.RateOffer) []domain.RateOffer {
	if rates == nil {
		return []domain.RateOffer{}
	}
	return rates
}

// ApplyShipmentRate handles POST /shipments/{id}/rates/apply.
func (h *ShippingHandler) ApplyShipmentRate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var rate domain.RateOffer
	if !decodeJSON(h.logger, w, r, &rate, false) {
		return
	}

	s, err := h.uc.ApplyShipmentRate(r.Context(), id, rate)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, shipmentToResponse(s))
}

// ApplySaleRate handles POST /sales/{id}/rates/apply.
func (h *ShippingHandler) ApplySaleRate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var rate domain.RateOffer
	if !decodeJSON(h.logger, w, r, &rate, false) {
		return
	}

	s, err := h.uc.ApplySaleRate(r.Context(), id, rate)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, saleToResponse(s))
}

// CopyShipment handles POST /shipments/{id}/copy.
func (h *ShippingHandler) CopyShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	cp, err := h.uc.CopyShipment(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/shipments/"+strconv.FormatInt(cp.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, shipmentToResponse(cp))
}

// CancelShipment handles POST /shipments/{id}/cancel.
func (h *ShippingHandler) CancelShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.uc.CancelShipment(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ShipmentWeight handles GET /shipments/{id}/weight?unit=.
func (h *ShippingHandler) ShipmentWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	unit := r.URL.Query().Get("unit")

	weight, err := h.uc.ShipmentWeight(r.Context(), id, unit)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, weightDTO{Weight: weight, Unit: unit})
}

// SaleWeight handles GET /sales/{id}/weight?unit=.
func (h *ShippingHandler) SaleWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	unit := r.URL.Query().Get("unit")

	weight, err := h.uc.SaleWeight(r.Context(), id, unit)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, weightDTO{Weight: weight, Unit: unit})
}
