package handlers

import (
	"net/http"

	"shipping-carrier-service/internal/logx"
)

// ManifestHandler serves manifest lifecycle endpoints.
type ManifestHandler struct {
	logger logx.Logger
	uc     manifestUsecase
}

// NewManifestHandler wires a manifest usecase into HTTP handlers.
func NewManifestHandler(logger logx.Logger, uc manifestUsecase) *ManifestHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ManifestHandler{logger: logger, uc: uc}
}

// Open handles POST /manifests and returns the open manifest of a carrier and warehouse.
func (h *ManifestHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openManifestRequest
	if !decodeJSON(h.logger, w, r, &req, false) {
		return
	}
	if req.CarrierID <= 0 || req.WarehouseID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "carrier_id and warehouse_id are required")
		return
	}

	m, err := h.uc.GetOrOpen(r.Context(), req.CarrierID, req.WarehouseID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, manifestToResponse(m))
}

// Get handles GET /manifests/{id}.
func (h *ManifestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	m, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, manifestToResponse(m))
}

// Close handles POST /manifests/{id}/close.
func (h *ManifestHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	m, err := h.uc.Close(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, manifestToResponse(m))
}

// AddShipment handles POST /manifests/{id}/shipments.
func (h *ManifestHandler) AddShipment(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req addShipmentRequest
	if !decodeJSON(h.logger, w, r, &req, false) {
		return
	}
	if req.ShipmentID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "shipment_id is required")
		return
	}

	if err := h.uc.AddShipment(r.Context(), id, req.ShipmentID); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
