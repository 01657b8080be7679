package rating_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/metrics"
	"shipping-carrier-service/internal/service/rating"
	testlog "shipping-carrier-service/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

func flatCarrier(price string) domain.Carrier {
	return domain.Carrier{
		ID:         1,
		Name:       "Local Courier",
		CostMethod: domain.CostMethodProduct,
		Product:    &domain.Product{ID: 7, Name: "Shipping", Type: domain.ProductService, ListPrice: decimal.RequireFromString(price)},
		Services:   []domain.Service{{ID: 3, Name: "Express"}},
		BoxTypes:   []domain.BoxType{{ID: 4, Name: "Small"}},
	}
}

func TestProductPrice_OneOfferRegardlessOfServiceAndBox(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockCarrierReader(ctrl)
	c := flatCarrier("10")
	reader.EXPECT().GetCarrier(gomock.Any(), int64(1)).Return(&c, nil).Times(3)

	agg := rating.NewAggregator("USD", nil, nil)
	sale := &domain.Sale{ID: 1, CurrencyCode: "EUR"}

	requests := []rating.Request{
		{CarrierIDs: []int64{1}},
		{CarrierIDs: []int64{1}, ServiceID: ptr(int64(3))},
		{CarrierIDs: []int64{1}, ServiceID: ptr(int64(3)), BoxTypeID: ptr(int64(4))},
	}
	for _, req := range requests {
		offers, err := agg.GetShippingRates(context.Background(), reader, sale, req)
		require.NoError(t, err)
		require.Len(t, offers, 1)
		require.True(t, decimal.NewFromInt(10).Equal(offers[0].Cost))
		require.Equal(t, "USD", offers[0].CostCurrency)
		require.Equal(t, int64(1), offers[0].CarrierID)
		require.Equal(t, req.ServiceID, offers[0].ServiceID)
	}
}

func TestProductPrice_CarriesRequestedService(t *testing.T) {
	t.Parallel()

	service := ptr(int64(3))
	agg := rating.NewAggregator("USD", nil, nil)
	offers, err := agg.GetShippingRate(context.Background(), &domain.Sale{}, flatCarrier("10"),
		rating.Request{ServiceID: service})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.NotNil(t, offers[0].ServiceID)
	require.Equal(t, int64(3), *offers[0].ServiceID)

	*service = 9
	require.Equal(t, int64(3), *offers[0].ServiceID)
}

func TestGetShippingRate_RejectsMisconfiguredCarrier(t *testing.T) {
	t.Parallel()

	c := flatCarrier("10")
	c.Services = append(c.Services, domain.Service{ID: 5, Name: "Ground", CostMethod: "ups"})

	reg, err := metrics.NewRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	agg := rating.NewAggregator("USD", nil, reg.RateQuotes)

	offers, err := agg.GetShippingRate(context.Background(), &domain.Sale{}, c,
		rating.Request{Options: rating.Options{Silent: true}})
	require.ErrorIs(t, err, apperr.ErrMissingConfiguration)
	require.ErrorContains(t, err, `service "Ground" has cost method "ups"`)
	require.Empty(t, offers)
	require.Equal(t, 1.0, testutil.ToFloat64(reg.RateQuotes.WithLabelValues(string(domain.CostMethodProduct), "error")))
}

func TestGetShippingRates_AllCarriersAndIdempotent(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockCarrierReader(ctrl)
	other := domain.Carrier{ID: 2, Name: "Live UPS", CostMethod: "ups"}
	reader.EXPECT().ListCarriers(gomock.Any()).Return([]domain.Carrier{flatCarrier("12.50"), other}, nil).Times(2)

	agg := rating.NewAggregator("USD", nil, nil)
	shipment := &domain.Shipment{ID: 1}

	first, err := agg.GetShippingRates(context.Background(), reader, shipment, rating.Request{})
	require.NoError(t, err)
	second, err := agg.GetShippingRates(context.Background(), reader, shipment, rating.Request{})
	require.NoError(t, err)

	require.Len(t, first, 1, "carriers without a strategy quote nothing")
	require.Equal(t, first, second)
}

func TestGetShippingRates_UnknownCarrier(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockCarrierReader(ctrl)
	reader.EXPECT().GetCarrier(gomock.Any(), int64(99)).Return(nil, nil)

	agg := rating.NewAggregator("USD", nil, nil)
	_, err := agg.GetShippingRates(context.Background(), reader, &domain.Sale{}, rating.Request{CarrierIDs: []int64{99}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetShippingRate_SilentSkipsMissingWeight(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	strategy := NewMockStrategy(ctrl)
	missing := fmt.Errorf("%w: product %q", apperr.ErrMissingWeight, "Anvil")
	strategy.EXPECT().Rates(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, missing).Times(2)

	rec := testlog.New()
	quotes := metrics.NewRateQuotesTotal()
	agg := rating.NewAggregator("USD", rec.Logger(), quotes)
	agg.Register("ups", strategy)

	c := domain.Carrier{ID: 2, Name: "UPS", CostMethod: "ups"}
	shipment := &domain.Shipment{ID: 5, Reference: "OUT-5"}

	offers, err := agg.GetShippingRate(context.Background(), shipment, c, rating.Request{Options: rating.Options{Silent: true}})
	require.NoError(t, err)
	require.Empty(t, offers)
	require.True(t, rec.HasEvent("rating_skipped"))

	_, err = agg.GetShippingRate(context.Background(), shipment, c, rating.Request{})
	require.ErrorIs(t, err, apperr.ErrMissingWeight)
	require.Contains(t, err.Error(), "UPS")

	require.Equal(t, 1.0, promValue(quotes, "ups", "skipped"))
	require.Equal(t, 1.0, promValue(quotes, "ups", "error"))
}

func TestGetShippingRate_SilentDoesNotHideOtherErrors(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	strategy := NewMockStrategy(ctrl)
	boom := errors.New("carrier api down")
	strategy.EXPECT().Rates(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	agg := rating.NewAggregator("USD", nil, nil)
	agg.Register("ups", strategy)

	_, err := agg.GetShippingRate(context.Background(), &domain.Sale{}, domain.Carrier{CostMethod: "ups"},
		rating.Request{Options: rating.Options{Silent: true}})
	require.ErrorIs(t, err, boom)
}

func TestGetShippingRate_MissingCarrierProduct(t *testing.T) {
	t.Parallel()

	c := flatCarrier("1")
	c.Product = nil

	agg := rating.NewAggregator("USD", nil, nil)
	_, err := agg.GetShippingRate(context.Background(), &domain.Sale{}, c, rating.Request{})
	require.ErrorIs(t, err, apperr.ErrMissingConfiguration)
}

func TestSalePrice(t *testing.T) {
	t.Parallel()

	agg := rating.NewAggregator("USD", nil, nil)
	c := flatCarrier("10")

	amount, cur, err := agg.SalePrice(context.Background(), &domain.Sale{}, c, rating.Options{})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(10).Equal(amount))
	require.Equal(t, "USD", cur)

	amount, cur, err = agg.SalePrice(context.Background(), &domain.Sale{}, c, rating.Options{IgnoreCarrierComputation: true})
	require.NoError(t, err)
	require.True(t, amount.IsZero())
	require.Equal(t, "USD", cur)

	amount, _, err = agg.SalePrice(context.Background(), &domain.Sale{}, domain.Carrier{CostMethod: "fedex"}, rating.Options{})
	require.NoError(t, err)
	require.True(t, amount.IsZero())
}

func TestGetShippingRate_IgnoreCarrierComputationZeroesOffers(t *testing.T) {
	t.Parallel()

	agg := rating.NewAggregator("USD", nil, nil)
	offers, err := agg.GetShippingRate(context.Background(), &domain.Sale{}, flatCarrier("10"),
		rating.Request{Options: rating.Options{IgnoreCarrierComputation: true}})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.True(t, offers[0].Cost.IsZero())
}

func promValue(vec *prometheus.CounterVec, labels ...string) float64 {
	return testutil.ToFloat64(vec.WithLabelValues(labels...))
}
