package handlers

import (
	"net/http"

	"shipping-carrier-service/internal/logx"
)

// CarrierHandler serves read-only carrier endpoints.
type CarrierHandler struct {
	logger logx.Logger
	repo   carrierReader
}

// NewCarrierHandler wires a carrier reader into HTTP handlers.
func NewCarrierHandler(logger logx.Logger, repo carrierReader) *CarrierHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CarrierHandler{logger: logger, repo: repo}
}

// GetByID handles GET /carriers/{id}.
func (h *CarrierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.repo.Get(r.Context(), id)
	switch {
	case err != nil:
		writeServiceError(h.logger, w, r, err)
	case c == nil:
		writeError(h.logger, w, r, http.StatusNotFound, "not found")
	default:
		writeJSON(h.logger, w, r, http.StatusOK, carrierToResponse(*c))
	}
}

// List handles GET /carriers.
func (h *CarrierHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, carriersToResponse(list))
}
