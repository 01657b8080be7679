package apperr

import (
	"errors"
	"net/http"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrMissingWeight is returned when a product has no declared weight and one is required.
var ErrMissingWeight = errors.New("weight is missing on product")

// ErrMissingConfiguration is returned when a required link (carrier product,
// default validation carrier, warehouse address) is absent.
var ErrMissingConfiguration = errors.New("missing configuration")

// ErrInvalidState is returned when an operation is attempted in the wrong lifecycle state.
var ErrInvalidState = errors.New("invalid state")

// ErrAlreadyPresent refuses to redo completed work (e.g. tracking number already exists).
var ErrAlreadyPresent = errors.New("already present")

// ErrFeatureUnavailable means no implementation is registered for the selected cost method.
var ErrFeatureUnavailable = errors.New("feature is not available")

// ErrIncompletePackaging means packages do not account for all outgoing moves.
var ErrIncompletePackaging = errors.New("incomplete packaging")

// Status maps a classified error to an HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid),
		errors.Is(err, ErrMissingWeight),
		errors.Is(err, ErrIncompletePackaging):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrAlreadyPresent):
		return http.StatusConflict
	case errors.Is(err, ErrMissingConfiguration):
		return http.StatusFailedDependency
	case errors.Is(err, ErrFeatureUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
