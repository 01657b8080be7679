package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/logx"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error", logx.String("req_id", reqID(r.Context())), logx.Err(err))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	logger.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, errResponse{Error: msg})
}

// writeServiceError maps a classified service error to its status. Unclassified errors are
// logged and reported as internal.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
		writeError(logger, w, r, status, "internal error")
		return
	}
	writeError(logger, w, r, status, err.Error())
}

const (
	bodyLimit = 1 << 20
)

// decodeJSON reads the body into dst. An empty body leaves dst untouched when optional is set.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
