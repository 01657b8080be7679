package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/http/handlers"
	"shipping-carrier-service/internal/service/label"
)

type stubLabelUsecase struct {
	startFn    func(ctx context.Context, shipmentID int64) (*label.Wizard, error)
	nextFn     func(ctx context.Context, id string, sel label.Selection) (*label.Wizard, error)
	generateFn func(ctx context.Context, id string, choice int) (*label.Wizard, error)
	getFn      func(ctx context.Context, id string) (*label.Wizard, error)
	endFn      func(ctx context.Context, id string) error
}

func (s *stubLabelUsecase) Start(ctx context.Context, shipmentID int64) (*label.Wizard, error) {
	return s.startFn(ctx, shipmentID)
}

func (s *stubLabelUsecase) Next(ctx context.Context, id string, sel label.Selection) (*label.Wizard, error) {
	return s.nextFn(ctx, id, sel)
}

func (s *stubLabelUsecase) Generate(ctx context.Context, id string, choice int) (*label.Wizard, error) {
	return s.generateFn(ctx, id, choice)
}

func (s *stubLabelUsecase) Get(ctx context.Context, id string) (*label.Wizard, error) {
	return s.getFn(ctx, id)
}

func (s *stubLabelUsecase) End(ctx context.Context, id string) error {
	return s.endFn(ctx, id)
}

func TestLabelHandler_Start_DraftIsConflict(t *testing.T) {
	t.Parallel()

	uc := &stubLabelUsecase{
		startFn: func(context.Context, int64) (*label.Wizard, error) { return nil, apperr.ErrInvalidState },
	}
	h := handlers.NewLabelHandler(testLogger(), uc)
	rr := httptest.NewRecorder()
	h.Start(rr, newRequest(http.MethodPost, "/shipments/1/label-wizard", "", map[string]string{"id": "1"}))
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestLabelHandler_Start_Created(t *testing.T) {
	t.Parallel()

	uc := &stubLabelUsecase{
		startFn: func(_ context.Context, id int64) (*label.Wizard, error) {
			return &label.Wizard{ID: "abc", ShipmentID: id, Step: label.StepStart}, nil
		},
	}
	h := handlers.NewLabelHandler(testLogger(), uc)
	rr := httptest.NewRecorder()
	h.Start(rr, newRequest(http.MethodPost, "/shipments/9/label-wizard", "", map[string]string{"id": "9"}))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/label-wizard/abc", rr.Header().Get("Location"))
	var out label.Wizard
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.Equal(t, int64(9), out.ShipmentID)
}

func TestLabelHandler_Next_PassesSelection(t *testing.T) {
	t.Parallel()

	uc := &stubLabelUsecase{
		nextFn: func(_ context.Context, id string, sel label.Selection) (*label.Wizard, error) {
			require.Equal(t, "abc", id)
			require.Equal(t, int64(3), *sel.CarrierID)
			require.True(t, decimal.RequireFromString("8").Equal(*sel.OverrideWeight))
			return &label.Wizard{ID: id, Step: label.StepSelectRate}, nil
		},
	}
	h := handlers.NewLabelHandler(testLogger(), uc)
	rr := httptest.NewRecorder()
	h.Next(rr, newRequest(http.MethodPost, "/label-wizard/abc/next", `{"carrier_id":3,"override_weight":"8"}`,
		map[string]string{"session": "abc"}))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLabelHandler_Generate_Unavailable(t *testing.T) {
	t.Parallel()

	uc := &stubLabelUsecase{
		generateFn: func(_ context.Context, _ string, choice int) (*label.Wizard, error) {
			require.Equal(t, 1, choice)
			return nil, apperr.ErrFeatureUnavailable
		},
	}
	h := handlers.NewLabelHandler(testLogger(), uc)
	rr := httptest.NewRecorder()
	h.Generate(rr, newRequest(http.MethodPost, "/label-wizard/abc/generate", `{"rate":1}`, map[string]string{"session": "abc"}))
	require.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestLabelHandler_GetAndEnd(t *testing.T) {
	t.Parallel()

	uc := &stubLabelUsecase{
		getFn: func(context.Context, string) (*label.Wizard, error) { return nil, apperr.ErrNotFound },
		endFn: func(context.Context, string) error { return nil },
	}
	h := handlers.NewLabelHandler(testLogger(), uc)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/label-wizard/gone", "", map[string]string{"session": "gone"}))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.End(rr, newRequest(http.MethodDelete, "/label-wizard/abc", "", map[string]string{"session": "abc"}))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
