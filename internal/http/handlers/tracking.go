package handlers

import (
	"net/http"

	"shipping-carrier-service/internal/logx"
)

// TrackingHandler serves tracking number actions.
type TrackingHandler struct {
	logger logx.Logger
	uc     trackingUsecase
}

// NewTrackingHandler wires a tracking usecase into HTTP handlers.
func NewTrackingHandler(logger logx.Logger, uc trackingUsecase) *TrackingHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &TrackingHandler{logger: logger, uc: uc}
}

func (h *TrackingHandler) respond(w http.ResponseWriter, r *http.Request, name string,
	call func(id int64) (trackingNumberDTO, error)) {
	id, err := idFromURL(r, name)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	out, err := call(id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// Get handles GET /tracking-numbers/{id}.
func (h *TrackingHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "id", func(id int64) (trackingNumberDTO, error) {
		tn, err := h.uc.Get(r.Context(), id)
		if err != nil {
			return trackingNumberDTO{}, err
		}
		return trackingToResponse(tn), nil
	})
}

// Cancel handles POST /tracking-numbers/{id}/cancel.
func (h *TrackingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "id", func(id int64) (trackingNumberDTO, error) {
		tn, err := h.uc.CancelAction(r.Context(), id)
		if err != nil {
			return trackingNumberDTO{}, err
		}
		return trackingToResponse(tn), nil
	})
}

// Refresh handles POST /tracking-numbers/{id}/refresh.
func (h *TrackingHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "id", func(id int64) (trackingNumberDTO, error) {
		tn, err := h.uc.Refresh(r.Context(), id)
		if err != nil {
			return trackingNumberDTO{}, err
		}
		return trackingToResponse(tn), nil
	})
}

// PackageTracking handles GET /packages/{id}/tracking-number.
func (h *TrackingHandler) PackageTracking(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	tn, err := h.uc.PackageTrackingNumber(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	if tn == nil {
		writeError(h.logger, w, r, http.StatusNotFound, "package has no active tracking number")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, trackingToResponse(tn))
}
