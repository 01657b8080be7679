package handlers

import (
	"net/http"

	"shipping-carrier-service/internal/logx"
)

// AddressHandler serves address validation.
type AddressHandler struct {
	logger logx.Logger
	uc     addressUsecase
}

// NewAddressHandler wires an address usecase into HTTP handlers.
func NewAddressHandler(logger logx.Logger, uc addressUsecase) *AddressHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AddressHandler{logger: logger, uc: uc}
}

// Validate handles POST /addresses/validate.
func (h *AddressHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateAddressRequest
	if !decodeJSON(h.logger, w, r, &req, false) {
		return
	}

	res, err := h.uc.ValidateAddress(r.Context(), req.Address, req.CarrierID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, res)
}
