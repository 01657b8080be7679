package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/service/label"
)

// LabelHandler serves the label wizard.
type LabelHandler struct {
	logger logx.Logger
	uc     labelUsecase
}

// NewLabelHandler wires a label usecase into HTTP handlers.
func NewLabelHandler(logger logx.Logger, uc labelUsecase) *LabelHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LabelHandler{logger: logger, uc: uc}
}

// Start handles POST /shipments/{id}/label-wizard.
func (h *LabelHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	wiz, err := h.uc.Start(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/label-wizard/"+wiz.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, wiz)
}

// Get handles GET /label-wizard/{session}.
func (h *LabelHandler) Get(w http.ResponseWriter, r *http.Request) {
	wiz, err := h.uc.Get(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, wiz)
}

// Next handles POST /label-wizard/{session}/next.
func (h *LabelHandler) Next(w http.ResponseWriter, r *http.Request) {
	var sel label.Selection
	if !decodeJSON(h.logger, w, r, &sel, true) {
		return
	}

	wiz, err := h.uc.Next(r.Context(), chi.URLParam(r, "session"), sel)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, wiz)
}

// Generate handles POST /label-wizard/{session}/generate.
func (h *LabelHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(h.logger, w, r, &req, true) {
		return
	}

	wiz, err := h.uc.Generate(r.Context(), chi.URLParam(r, "session"), req.Rate)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, wiz)
}

// End handles DELETE /label-wizard/{session}.
func (h *LabelHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.End(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
