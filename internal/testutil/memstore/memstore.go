// Package memstore is an in-memory shippingtx.Runner for service tests.
// A failed or panicking transaction restores the state it started from.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/ports/shippingtx"
)

type state struct {
	nextID      int64
	carriers    map[int64]domain.Carrier
	config      domain.CarrierConfig
	shipments   map[int64]domain.Shipment
	sales       map[int64]domain.Sale
	tracking    map[int64]domain.TrackingNumber
	attachments map[int64]domain.Attachment
	manifests   map[int64]domain.Manifest
	logs        []domain.CarrierLog
}

// Store keeps every entity in maps guarded by a single mutex.
type Store struct {
	mu  sync.Mutex
	st  state
	txs int
}

// New returns an empty store.
func New() *Store {
	return &Store{st: state{
		nextID:      1000,
		carriers:    map[int64]domain.Carrier{},
		shipments:   map[int64]domain.Shipment{},
		sales:       map[int64]domain.Sale{},
		tracking:    map[int64]domain.TrackingNumber{},
		attachments: map[int64]domain.Attachment{},
		manifests:   map[int64]domain.Manifest{},
	}}
}

// WithTx implements shippingtx.Runner.
func (s *Store) WithTx(ctx context.Context, fn func(tx shippingtx.Repository) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs++

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&tx{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Transactions returns how many transactions were started.
func (s *Store) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

// PutCarrier stores c, assigning an id when it has none.
func (s *Store) PutCarrier(c domain.Carrier) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.st.id()
	}
	s.st.carriers[c.ID] = c
	return c.ID
}

// SetConfig replaces the carrier configuration.
func (s *Store) SetConfig(c domain.CarrierConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.config = c
}

// PutShipment stores sh, assigning ids to it and its moves and packages when missing.
func (s *Store) PutShipment(sh domain.Shipment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == 0 {
		sh.ID = s.st.id()
	}
	sh = cloneShipment(sh)
	for i := range sh.OutgoingMoves {
		if sh.OutgoingMoves[i].ID == 0 {
			sh.OutgoingMoves[i].ID = s.st.id()
		}
	}
	for i := range sh.Packages {
		if sh.Packages[i].ID == 0 {
			sh.Packages[i].ID = s.st.id()
		}
		sh.Packages[i].ShipmentID = sh.ID
	}
	s.st.shipments[sh.ID] = sh
	return sh.ID
}

// Shipment returns a copy of the stored shipment.
func (s *Store) Shipment(id int64) (domain.Shipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.st.shipments[id]
	return cloneShipment(sh), ok
}

// PutSale stores sale, assigning ids when missing.
func (s *Store) PutSale(sale domain.Sale) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == 0 {
		sale.ID = s.st.id()
	}
	sale = cloneSale(sale)
	for i := range sale.Lines {
		if sale.Lines[i].ID == 0 {
			sale.Lines[i].ID = s.st.id()
		}
		sale.Lines[i].SaleID = sale.ID
	}
	s.st.sales[sale.ID] = sale
	return sale.ID
}

// Sale returns a copy of the stored sale.
func (s *Store) Sale(id int64) (domain.Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.st.sales[id]
	return cloneSale(sale), ok
}

// PutTrackingNumber stores tn, assigning an id when it has none.
func (s *Store) PutTrackingNumber(tn domain.TrackingNumber) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tn.ID == 0 {
		tn.ID = s.st.id()
	}
	s.st.tracking[tn.ID] = tn
	return tn.ID
}

// TrackingNumber returns the stored tracking number.
func (s *Store) TrackingNumber(id int64) (domain.TrackingNumber, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tn, ok := s.st.tracking[id]
	return tn, ok
}

// TrackingNumbers returns every stored tracking number ordered by id.
func (s *Store) TrackingNumbers() []domain.TrackingNumber {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TrackingNumber, 0, len(s.st.tracking))
	for _, tn := range s.st.tracking {
		out = append(out, tn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Attachments returns every stored attachment ordered by id.
func (s *Store) Attachments() []domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Attachment, 0, len(s.st.attachments))
	for _, a := range s.st.attachments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutManifest stores m, assigning an id when it has none.
func (s *Store) PutManifest(m domain.Manifest) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.st.id()
	}
	s.st.manifests[m.ID] = m
	return m.ID
}

// Manifest returns the stored manifest.
func (s *Store) Manifest(id int64) (domain.Manifest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.st.manifests[id]
	return m, ok
}

// CarrierLogs returns the stored carrier logs.
func (s *Store) CarrierLogs() []domain.CarrierLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CarrierLog(nil), s.st.logs...)
}

func (st *state) id() int64 {
	st.nextID++
	return st.nextID
}

func (st state) clone() state {
	out := state{
		nextID:      st.nextID,
		carriers:    make(map[int64]domain.Carrier, len(st.carriers)),
		config:      st.config,
		shipments:   make(map[int64]domain.Shipment, len(st.shipments)),
		sales:       make(map[int64]domain.Sale, len(st.sales)),
		tracking:    make(map[int64]domain.TrackingNumber, len(st.tracking)),
		attachments: make(map[int64]domain.Attachment, len(st.attachments)),
		manifests:   make(map[int64]domain.Manifest, len(st.manifests)),
		logs:        append([]domain.CarrierLog(nil), st.logs...),
	}
	for k, v := range st.carriers {
		out.carriers[k] = v
	}
	for k, v := range st.shipments {
		out.shipments[k] = cloneShipment(v)
	}
	for k, v := range st.sales {
		out.sales[k] = cloneSale(v)
	}
	for k, v := range st.tracking {
		out.tracking[k] = v
	}
	for k, v := range st.attachments {
		out.attachments[k] = v
	}
	for k, v := range st.manifests {
		out.manifests[k] = v
	}
	return out
}

func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneShipping(sh domain.Shipping) domain.Shipping {
	sh.CarrierID = cloneID(sh.CarrierID)
	sh.ServiceID = cloneID(sh.ServiceID)
	return sh
}

func clonePackage(p domain.Package) domain.Package {
	p.BoxTypeID = cloneID(p.BoxTypeID)
	p.MoveIDs = append([]int64(nil), p.MoveIDs...)
	return p
}

func cloneShipment(sh domain.Shipment) domain.Shipment {
	sh.Shipping = cloneShipping(sh.Shipping)
	sh.TrackingNumberID = cloneID(sh.TrackingNumberID)
	sh.ManifestID = cloneID(sh.ManifestID)
	sh.OutgoingMoves = append([]domain.Move(nil), sh.OutgoingMoves...)
	if sh.Packages != nil {
		pkgs := make([]domain.Package, len(sh.Packages))
		for i, p := range sh.Packages {
			pkgs[i] = clonePackage(p)
		}
		sh.Packages = pkgs
	}
	return sh
}

func cloneSale(s domain.Sale) domain.Sale {
	s.Shipping = cloneShipping(s.Shipping)
	s.Lines = append([]domain.SaleLine(nil), s.Lines...)
	return s
}

type tx struct {
	st *state
}

var _ shippingtx.Repository = (*tx)(nil)

func (t *tx) GetCarrier(_ context.Context, id int64) (*domain.Carrier, error) {
	c, ok := t.st.carriers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *tx) ListCarriers(_ context.Context) ([]domain.Carrier, error) {
	out := make([]domain.Carrier, 0, len(t.st.carriers))
	for _, c := range t.st.carriers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) GetCarrierConfig(_ context.Context) (domain.CarrierConfig, error) {
	return t.st.config, nil
}

func (t *tx) GetShipment(_ context.Context, id int64) (*domain.Shipment, error) {
	sh, ok := t.st.shipments[id]
	if !ok {
		return nil, nil
	}
	sh = cloneShipment(sh)
	return &sh, nil
}

func (t *tx) InsertShipment(_ context.Context, sh *domain.Shipment) error {
	sh.ID = t.st.id()
	for i := range sh.OutgoingMoves {
		sh.OutgoingMoves[i].ID = t.st.id()
	}
	for i := range sh.Packages {
		sh.Packages[i].ID = t.st.id()
		sh.Packages[i].ShipmentID = sh.ID
	}
	t.st.shipments[sh.ID] = cloneShipment(*sh)
	return nil
}

func (t *tx) shipment(id int64) (domain.Shipment, error) {
	sh, ok := t.st.shipments[id]
	if !ok {
		return domain.Shipment{}, fmt.Errorf("shipment %d not found", id)
	}
	return sh, nil
}

func (t *tx) UpdateShipmentShipping(_ context.Context, id int64, shipping domain.Shipping) error {
	sh, err := t.shipment(id)
	if err != nil {
		return err
	}
	sh.Shipping = cloneShipping(shipping)
	t.st.shipments[id] = sh
	return nil
}

func (t *tx) UpdateShipmentState(_ context.Context, id int64, state domain.ShipmentState) error {
	sh, err := t.shipment(id)
	if err != nil {
		return err
	}
	sh.State = state
	t.st.shipments[id] = sh
	return nil
}

func (t *tx) SetShipmentTracking(_ context.Context, id int64, trackingID *int64) error {
	sh, err := t.shipment(id)
	if err != nil {
		return err
	}
	sh.TrackingNumberID = cloneID(trackingID)
	t.st.shipments[id] = sh
	return nil
}

func (t *tx) SetShipmentManifest(_ context.Context, id int64, manifestID *int64) error {
	sh, err := t.shipment(id)
	if err != nil {
		return err
	}
	sh.ManifestID = cloneID(manifestID)
	t.st.shipments[id] = sh
	return nil
}

func (t *tx) InsertPackage(_ context.Context, p *domain.Package) error {
	sh, err := t.shipment(p.ShipmentID)
	if err != nil {
		return err
	}
	p.ID = t.st.id()
	sh.Packages = append(sh.Packages, clonePackage(*p))
	t.st.shipments[sh.ID] = sh
	return nil
}

func (t *tx) UpdatePackage(_ context.Context, p domain.Package) error {
	sh, err := t.shipment(p.ShipmentID)
	if err != nil {
		return err
	}
	for i := range sh.Packages {
		if sh.Packages[i].ID == p.ID {
			sh.Packages[i] = clonePackage(p)
			t.st.shipments[sh.ID] = sh
			return nil
		}
	}
	return fmt.Errorf("package %d not found", p.ID)
}

func (t *tx) DeletePackages(_ context.Context, shipmentID int64) error {
	sh, err := t.shipment(shipmentID)
	if err != nil {
		return err
	}
	sh.Packages = nil
	t.st.shipments[shipmentID] = sh
	return nil
}

func (t *tx) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	sale, ok := t.st.sales[id]
	if !ok {
		return nil, nil
	}
	sale = cloneSale(sale)
	return &sale, nil
}

func (t *tx) UpdateSaleShipping(_ context.Context, id int64, shipping domain.Shipping) error {
	sale, ok := t.st.sales[id]
	if !ok {
		return fmt.Errorf("sale %d not found", id)
	}
	sale.Shipping = cloneShipping(shipping)
	t.st.sales[id] = sale
	return nil
}

func (t *tx) ReplaceShipmentCostLine(_ context.Context, saleID int64, line *domain.SaleLine) error {
	sale, ok := t.st.sales[saleID]
	if !ok {
		return fmt.Errorf("sale %d not found", saleID)
	}
	kept := make([]domain.SaleLine, 0, len(sale.Lines)+1)
	for _, l := range sale.Lines {
		if !l.ShipmentCost {
			kept = append(kept, l)
		}
	}
	line.ID = t.st.id()
	line.SaleID = saleID
	line.ShipmentCost = true
	sale.Lines = append(kept, *line)
	t.st.sales[saleID] = sale
	return nil
}

func (t *tx) GetTrackingNumber(_ context.Context, id int64) (*domain.TrackingNumber, error) {
	tn, ok := t.st.tracking[id]
	if !ok {
		return nil, nil
	}
	return &tn, nil
}

func (t *tx) FindTrackingNumber(_ context.Context, carrierID int64, number string) (*domain.TrackingNumber, error) {
	for _, tn := range t.st.tracking {
		if tn.CarrierID == carrierID && tn.Number == number {
			return &tn, nil
		}
	}
	return nil, nil
}

func (t *tx) InsertTrackingNumber(_ context.Context, tn *domain.TrackingNumber) error {
	tn.ID = t.st.id()
	t.st.tracking[tn.ID] = *tn
	return nil
}

func (t *tx) UpdateTrackingNumber(_ context.Context, tn domain.TrackingNumber) error {
	if _, ok := t.st.tracking[tn.ID]; !ok {
		return fmt.Errorf("tracking number %d not found", tn.ID)
	}
	t.st.tracking[tn.ID] = tn
	return nil
}

func (t *tx) ListTrackingNumbersByState(_ context.Context, states []domain.TrackingState) ([]domain.TrackingNumber, error) {
	var out []domain.TrackingNumber
	for _, tn := range t.st.tracking {
		for _, st := range states {
			if tn.State == st {
				out = append(out, tn)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) ListTrackingNumbersByOrigin(_ context.Context, origins []domain.Origin) ([]domain.TrackingNumber, error) {
	var out []domain.TrackingNumber
	for _, tn := range t.st.tracking {
		for _, o := range origins {
			if tn.Origin != nil && tn.Origin.String() == o.String() {
				out = append(out, tn)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) InsertAttachment(_ context.Context, a *domain.Attachment) error {
	a.ID = t.st.id()
	t.st.attachments[a.ID] = *a
	return nil
}

func (t *tx) GetManifest(_ context.Context, id int64) (*domain.Manifest, error) {
	m, ok := t.st.manifests[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (t *tx) ListOpenManifests(_ context.Context, carrierID, warehouseID int64) ([]domain.Manifest, error) {
	var out []domain.Manifest
	for _, m := range t.st.manifests {
		if m.CarrierID == carrierID && m.WarehouseID == warehouseID && m.State == domain.ManifestOpen {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) InsertManifest(_ context.Context, m *domain.Manifest) error {
	m.ID = t.st.id()
	t.st.manifests[m.ID] = *m
	return nil
}

func (t *tx) UpdateManifest(_ context.Context, m domain.Manifest) error {
	if _, ok := t.st.manifests[m.ID]; !ok {
		return fmt.Errorf("manifest %d not found", m.ID)
	}
	t.st.manifests[m.ID] = m
	return nil
}

func (t *tx) InsertCarrierLog(_ context.Context, l *domain.CarrierLog) error {
	l.ID = t.st.id()
	t.st.logs = append(t.st.logs, *l)
	return nil
}
