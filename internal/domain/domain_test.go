package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCarrier_Validate_CostMethodMismatch(t *testing.T) {
	t.Parallel()

	c := domain.Carrier{
		Name:       "UPS",
		CostMethod: "ups",
		Services:   []domain.Service{{Name: "Ground", CostMethod: "ups"}, {Name: "Any"}},
	}
	require.NoError(t, c.Validate())

	require.NoError(t, c.CheckConfigured())

	c.BoxTypes = []domain.BoxType{{Name: "FedEx Box", CostMethod: "fedex"}}
	require.ErrorIs(t, c.Validate(), apperr.ErrInvalid)
	require.ErrorIs(t, c.CheckConfigured(), apperr.ErrMissingConfiguration)
}

func TestBoxType_Validate_DistanceUnitRequired(t *testing.T) {
	t.Parallel()

	b := domain.BoxType{Name: "small", Length: decimal.NewFromInt(10)}
	require.ErrorIs(t, b.Validate(), apperr.ErrInvalid)

	b.DistanceUnit = "in"
	require.NoError(t, b.Validate())

	require.NoError(t, domain.BoxType{Name: "envelope"}.Validate())
}

func TestPackage_Validate_OverrideUnitRequired(t *testing.T) {
	t.Parallel()

	p := domain.Package{ID: 1, OverrideWeight: decimal.NewFromInt(3)}
	require.ErrorIs(t, p.Validate(), apperr.ErrInvalid)

	p.OverrideWeightUnit = "kg"
	require.NoError(t, p.Validate())
}

func TestShipment_AllowLabelGeneration(t *testing.T) {
	t.Parallel()

	s := &domain.Shipment{ID: 1, Reference: "OUT-1", State: domain.ShipmentDraft}
	require.ErrorIs(t, s.AllowLabelGeneration(), apperr.ErrInvalidState)

	s.State = domain.ShipmentPacked
	require.NoError(t, s.AllowLabelGeneration())

	s.TrackingNumberID = ptr(int64(9))
	require.ErrorIs(t, s.AllowLabelGeneration(), apperr.ErrAlreadyPresent)
}

func TestShipment_Copy_StartsUntracked(t *testing.T) {
	t.Parallel()

	s := &domain.Shipment{
		ID:               5,
		State:            domain.ShipmentDone,
		Shipping:         domain.Shipping{CarrierID: ptr(int64(2))},
		TrackingNumberID: ptr(int64(11)),
		ManifestID:       ptr(int64(3)),
		OutgoingMoves:    []domain.Move{{ID: 1, Quantity: decimal.NewFromInt(2)}},
		Packages:         []domain.Package{{ID: 4, MoveIDs: []int64{1}}},
	}

	cp := s.Copy()

	require.Nil(t, cp.TrackingNumberID)
	require.Nil(t, cp.ManifestID)
	require.Empty(t, cp.Packages)
	require.Equal(t, domain.ShipmentDraft, cp.State)
	require.Zero(t, cp.OutgoingMoves[0].ID)
	require.Equal(t, int64(2), *cp.CarrierID)

	*cp.CarrierID = 7
	require.Equal(t, int64(2), *s.CarrierID, "copy must not alias the original carrier")
	require.Equal(t, int64(11), *s.TrackingNumberID)
}

func TestShipment_ShipFromAddressAndInternational(t *testing.T) {
	t.Parallel()

	s := &domain.Shipment{DeliveryAddress: &domain.Address{Country: "US"}}

	_, err := s.ShipFromAddress(false)
	require.ErrorIs(t, err, apperr.ErrMissingConfiguration)

	addr, err := s.ShipFromAddress(true)
	require.NoError(t, err)
	require.Nil(t, addr)
	require.False(t, s.IsInternational())

	s.Warehouse = &domain.Warehouse{Address: &domain.Address{Country: "CA"}}
	require.True(t, s.IsInternational())

	s.DeliveryAddress.Country = "CA"
	require.False(t, s.IsInternational())
}

func TestShipment_PackageMoves(t *testing.T) {
	t.Parallel()

	s := &domain.Shipment{OutgoingMoves: []domain.Move{{ID: 1}, {ID: 2}, {ID: 3}}}
	moves := s.PackageMoves(domain.Package{MoveIDs: []int64{3, 1, 99}})

	require.Len(t, moves, 2)
	require.Equal(t, int64(3), moves[0].ID)
	require.Equal(t, int64(1), moves[1].ID)
	require.Equal(t, []int64{1, 2, 3}, s.MoveIDs())
}

func TestTrackingNumber_CancelFromAnyState(t *testing.T) {
	t.Parallel()

	states := []domain.TrackingState{
		domain.TrackingWaiting, domain.TrackingInTransit, domain.TrackingDelivered,
		domain.TrackingFailure, domain.TrackingReturned, domain.TrackingCancelled,
		domain.TrackingPendingCancellation,
	}
	for _, st := range states {
		tn := domain.TrackingNumber{State: st}
		tn.Cancel()
		require.Equal(t, domain.TrackingCancelled, tn.State, "from %s", st)
		require.False(t, tn.Active())
	}
}

func TestTrackingState_Refreshable(t *testing.T) {
	t.Parallel()

	require.True(t, domain.TrackingWaiting.Refreshable())
	require.True(t, domain.TrackingPendingCancellation.Refreshable())
	require.False(t, domain.TrackingDelivered.Refreshable())
	require.False(t, domain.TrackingReturned.Refreshable())
	require.False(t, domain.TrackingCancelled.Refreshable())
	require.False(t, domain.TrackingState("lost").Valid())
}

func TestParseOrigin(t *testing.T) {
	t.Parallel()

	o, err := domain.ParseOrigin(domain.PackageOrigin{PackageID: 12}.String())
	require.NoError(t, err)
	require.Equal(t, domain.PackageOrigin{PackageID: 12}, o)

	o, err = domain.ParseOrigin("shipment,3")
	require.NoError(t, err)
	require.Equal(t, domain.ShipmentOrigin{ShipmentID: 3}, o)

	for _, bad := range []string{"", "shipment", "sale,1", "package,x", "package,-1"} {
		_, err := domain.ParseOrigin(bad)
		require.ErrorIs(t, err, apperr.ErrInvalid, bad)
	}
}

func TestManifest_CloseAndAccepts(t *testing.T) {
	t.Parallel()

	m := &domain.Manifest{ID: 1, CarrierID: 2, WarehouseID: 3, State: domain.ManifestOpen}
	s := &domain.Shipment{
		ID:               10,
		State:            domain.ShipmentDone,
		Shipping:         domain.Shipping{CarrierID: ptr(int64(2))},
		Warehouse:        &domain.Warehouse{ID: 3},
		TrackingNumberID: ptr(int64(1)),
	}
	require.NoError(t, m.Accepts(s))

	s.TrackingNumberID = nil
	require.ErrorIs(t, m.Accepts(s), apperr.ErrInvalid)
	s.TrackingNumberID = ptr(int64(1))

	s.ManifestID = ptr(int64(8))
	require.ErrorIs(t, m.Accepts(s), apperr.ErrConflict)
	s.ManifestID = nil

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.Close(now))
	require.Equal(t, domain.ManifestClosed, m.State)
	require.Equal(t, now, *m.CloseDate)

	require.ErrorIs(t, m.Close(now), apperr.ErrInvalidState)
	require.ErrorIs(t, m.Accepts(s), apperr.ErrInvalidState)
}

func TestAddress_MissingField(t *testing.T) {
	t.Parallel()

	a := domain.Address{Name: "John Doe", Street: "250 NE 25th St", Zip: "33137", City: "Miami", Country: "US"}
	require.Equal(t, "subdivision", a.MissingField())

	a.Subdivision = "US-FL"
	require.Empty(t, a.MissingField())
}

func TestSortByCost(t *testing.T) {
	t.Parallel()

	offers := []domain.RateOffer{
		{DisplayName: "b", Cost: decimal.NewFromInt(12)},
		{DisplayName: "a", Cost: decimal.RequireFromString("9.50")},
		{DisplayName: "c", Cost: decimal.NewFromInt(12)},
	}
	domain.SortByCost(offers)
	require.Equal(t, []string{"a", "b", "c"},
		[]string{offers[0].DisplayName, offers[1].DisplayName, offers[2].DisplayName})
}
