package carrierlog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/ports/shippingtx"
	"shipping-carrier-service/internal/service/carrierlog"
	"shipping-carrier-service/internal/testutil/memstore"
)

type otherOwner struct{ domain.Shipping }

func (o *otherOwner) ShippingInfo() *domain.Shipping { return &o.Shipping }
func (o *otherOwner) EntityCurrency() string         { return "" }
func (o *otherOwner) Label() string                  { return "other" }

func TestRecorder_Add_DisabledByDefault(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	r := carrierlog.NewRecorder()

	err := store.WithTx(context.Background(), func(tx shippingtx.Repository) error {
		l, err := r.Add(context.Background(), tx, &domain.Sale{ID: 1}, 2, "quoted")
		require.Nil(t, l)
		return err
	})
	require.NoError(t, err)
	require.Empty(t, store.CarrierLogs())
}

func TestRecorder_Add_PersistsWhenEnabled(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.SetConfig(domain.CarrierConfig{SaveCarrierLogs: true})
	r := carrierlog.NewRecorder()

	err := store.WithTx(context.Background(), func(tx shippingtx.Repository) error {
		if _, err := r.Add(context.Background(), tx, &domain.Sale{ID: 1}, 2, " quoted \n"); err != nil {
			return err
		}
		_, err := r.Add(context.Background(), tx, &domain.Shipment{ID: 3}, 2, "label")
		return err
	})
	require.NoError(t, err)

	logs := store.CarrierLogs()
	require.Len(t, logs, 2)
	require.Equal(t, int64(1), *logs[0].SaleID)
	require.Nil(t, logs[0].ShipmentID)
	require.Equal(t, "quoted", logs[0].Log)
	require.Equal(t, int64(3), *logs[1].ShipmentID)
	require.False(t, logs[1].CreatedAt.IsZero())
}

func TestRecorder_Add_UnknownOwner(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.SetConfig(domain.CarrierConfig{SaveCarrierLogs: true})

	err := store.WithTx(context.Background(), func(tx shippingtx.Repository) error {
		_, err := carrierlog.NewRecorder().Add(context.Background(), tx, &otherOwner{}, 2, "x")
		return err
	})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
