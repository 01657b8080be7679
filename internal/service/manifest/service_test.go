package manifest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	testlog "shipping-carrier-service/internal/testutil"
	"shipping-carrier-service/internal/testutil/memstore"
)

type ManifestSuite struct {
	suite.Suite

	store   *memstore.Store
	rec     *testlog.Recorder
	svc     *Service
	carrier int64
	now     time.Time
}

func TestManifestSuite(t *testing.T) {
	suite.Run(t, new(ManifestSuite))
}

func (s *ManifestSuite) SetupTest() {
	s.store = memstore.New()
	s.rec = testlog.New()
	s.svc = NewService(s.store, time.Second, s.rec.Logger())
	s.now = time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.now }
	s.carrier = s.store.PutCarrier(domain.Carrier{Name: "UPS", CostMethod: "ups"})
}

func (s *ManifestSuite) trackedShipment(state domain.ShipmentState, warehouseID int64) int64 {
	tn := s.store.PutTrackingNumber(domain.TrackingNumber{Number: "1Z", CarrierID: s.carrier, State: domain.TrackingWaiting})
	return s.store.PutShipment(domain.Shipment{
		State:            state,
		Warehouse:        &domain.Warehouse{ID: warehouseID},
		Shipping:         domain.Shipping{CarrierID: &s.carrier},
		TrackingNumberID: &tn,
	})
}

func (s *ManifestSuite) TestGetOrOpen_ReusesOpenManifest() {
	ctx := context.Background()

	first, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)
	s.Require().Equal(domain.ManifestOpen, first.State)

	again, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)
	s.Require().Equal(first.ID, again.ID)

	other, err := s.svc.GetOrOpen(ctx, s.carrier, 2)
	s.Require().NoError(err)
	s.Require().NotEqual(first.ID, other.ID)
	s.Require().True(s.rec.HasEvent("manifest_opened"))
}

func (s *ManifestSuite) TestGetOrOpen_UnknownCarrier() {
	_, err := s.svc.GetOrOpen(context.Background(), 404, 1)
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *ManifestSuite) TestValidate_TwoOpenManifestsConflict() {
	s.store.PutManifest(domain.Manifest{CarrierID: s.carrier, WarehouseID: 1, State: domain.ManifestOpen})
	s.Require().NoError(s.svc.Validate(context.Background(), s.carrier, 1))

	s.store.PutManifest(domain.Manifest{CarrierID: s.carrier, WarehouseID: 1, State: domain.ManifestOpen})
	s.Require().ErrorIs(s.svc.Validate(context.Background(), s.carrier, 1), apperr.ErrConflict)

	_, err := s.svc.GetOrOpen(context.Background(), s.carrier, 1)
	s.Require().ErrorIs(err, apperr.ErrConflict)
}

func (s *ManifestSuite) TestClose_SetsDateOnce() {
	ctx := context.Background()
	m, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)

	closed, err := s.svc.Close(ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.ManifestClosed, closed.State)
	s.Require().Equal(s.now, *closed.CloseDate)
	s.Require().True(s.rec.HasEvent("manifest_closed"))

	_, err = s.svc.Close(ctx, m.ID)
	s.Require().ErrorIs(err, apperr.ErrInvalidState)

	next, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)
	s.Require().NotEqual(m.ID, next.ID)
}

func (s *ManifestSuite) TestAddShipment() {
	ctx := context.Background()
	m, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)

	id := s.trackedShipment(domain.ShipmentDone, 1)
	s.Require().NoError(s.svc.AddShipment(ctx, m.ID, id))
	s.Require().NoError(s.svc.AddShipment(ctx, m.ID, id))

	sh, _ := s.store.Shipment(id)
	s.Require().Equal(m.ID, *sh.ManifestID)
}

func (s *ManifestSuite) TestAddShipment_Rejections() {
	ctx := context.Background()
	m, err := s.svc.GetOrOpen(ctx, s.carrier, 1)
	s.Require().NoError(err)

	wrongWarehouse := s.trackedShipment(domain.ShipmentDone, 2)
	s.Require().ErrorIs(s.svc.AddShipment(ctx, m.ID, wrongWarehouse), apperr.ErrInvalid)

	draft := s.trackedShipment(domain.ShipmentDraft, 1)
	s.Require().ErrorIs(s.svc.AddShipment(ctx, m.ID, draft), apperr.ErrInvalidState)

	untracked := s.store.PutShipment(domain.Shipment{
		State:     domain.ShipmentPacked,
		Warehouse: &domain.Warehouse{ID: 1},
		Shipping:  domain.Shipping{CarrierID: &s.carrier},
	})
	s.Require().ErrorIs(s.svc.AddShipment(ctx, m.ID, untracked), apperr.ErrInvalid)

	s.Require().ErrorIs(s.svc.AddShipment(ctx, m.ID, 9999), apperr.ErrNotFound)

	_, err = s.svc.Close(ctx, m.ID)
	s.Require().NoError(err)
	ok := s.trackedShipment(domain.ShipmentDone, 1)
	s.Require().ErrorIs(s.svc.AddShipment(ctx, m.ID, ok), apperr.ErrInvalidState)
}
