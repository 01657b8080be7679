// Package label runs the label generation wizard: carrier selection, packing, rate selection,
// rate application and the carrier label call.
package label

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/logx"
	"shipping-carrier-service/internal/ports/shippingtx"
	"shipping-carrier-service/internal/service/rating"
)

type sessionStore interface {
	NewID() string
	Put(id string, v any) error
	Get(id string, v any) error
	Delete(id string) error
}

type rater interface {
	GetShippingRates(ctx context.Context, r rating.CarrierReader, entity domain.Shippable, req rating.Request) ([]domain.RateOffer, error)
}

type rateApplier interface {
	ApplyToShipment(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, rate domain.RateOffer) error
}

type packer interface {
	EnsurePackaged(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, boxTypeID *int64) error
	OverrideTotal(s *domain.Shipment, unit string) (decimal.Decimal, error)
	RedistributeOverrideWeight(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, requested, previous decimal.Decimal, unit string) error
	ReassignBoxType(ctx context.Context, tx shippingtx.Repository, s *domain.Shipment, boxTypeID *int64) error
}

type carrierLogger interface {
	Add(ctx context.Context, tx shippingtx.Repository, owner domain.Shippable, carrierID int64, text string) (*domain.CarrierLog, error)
}

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Deps groups the collaborators of an Orchestrator.
type Deps struct {
	Repo     shippingtx.Runner
	Sessions sessionStore
	Rates    rater
	Applier  rateApplier
	Packer   packer
	Logs     carrierLogger
	Labels   counterVec
	Logger   logx.Logger
}

// Orchestrator drives the label wizard. Every step runs in its own transaction and the
// wizard state lives in the session store between steps.
type Orchestrator struct {
	Deps
	weightUnit       string
	operationTimeout time.Duration

	mu         sync.RWMutex
	generators map[domain.CostMethod]Generator
}

// NewOrchestrator creates an Orchestrator. weightUnit is the default unit of the override weight.
func NewOrchestrator(d Deps, weightUnit string, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	if weightUnit == "" {
		weightUnit = "kg"
	}
	return &Orchestrator{
		Deps:             d,
		weightUnit:       weightUnit,
		operationTimeout: timeout,
		generators:       map[domain.CostMethod]Generator{},
	}
}

// Register installs the label generator for a carrier cost method.
func (o *Orchestrator) Register(method domain.CostMethod, g Generator) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generators[method] = g
}

func (o *Orchestrator) generator(method domain.CostMethod) (Generator, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	g, ok := o.generators[method]
	return g, ok
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.operationTimeout)
}

func loadShipment(ctx context.Context, tx shippingtx.Repository, id int64) (*domain.Shipment, error) {
	s, err := tx.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: shipment %d", apperr.ErrNotFound, id)
	}
	return s, nil
}

// Start opens a wizard for the shipment, prefilled with its carrier, service and override total.
// Nothing is written to the shipment.
func (o *Orchestrator) Start(ctx context.Context, shipmentID int64) (*Wizard, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	w := &Wizard{ID: o.Sessions.NewID(), ShipmentID: shipmentID, Step: StepStart, WeightUnit: o.weightUnit}
	err := o.Repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		s, err := loadShipment(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		if err := s.AllowLabelGeneration(); err != nil {
			return err
		}
		w.CarrierID = s.CarrierID
		w.ServiceID = s.ServiceID
		w.PreviousWeight, err = o.Packer.OverrideTotal(s, w.WeightUnit)
		if err != nil {
			return err
		}
		w.OverrideWeight = w.PreviousWeight
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := o.Sessions.Put(w.ID, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns the wizard state.
func (o *Orchestrator) Get(_ context.Context, id string) (*Wizard, error) {
	var w Wizard
	if err := o.Sessions.Get(id, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// End closes the wizard.
func (o *Orchestrator) End(_ context.Context, id string) error {
	var w Wizard
	if err := o.Sessions.Get(id, &w); err != nil {
		return err
	}
	return o.Sessions.Delete(id)
}

func (o *Orchestrator) session(id string, want Step) (*Wizard, error) {
	var w Wizard
	if err := o.Sessions.Get(id, &w); err != nil {
		return nil, err
	}
	if w.Step != want {
		return nil, fmt.Errorf("%w: wizard %s is at step %s, expected %s", apperr.ErrInvalidState, id, w.Step, want)
	}
	return &w, nil
}

func resolveCarrier(ctx context.Context, tx shippingtx.Repository, w *Wizard) (*domain.Carrier, error) {
	if w.CarrierID == nil {
		return nil, fmt.Errorf("%w: a carrier is required", apperr.ErrInvalid)
	}
	c, err := tx.GetCarrier(ctx, *w.CarrierID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: carrier %d", apperr.ErrNotFound, *w.CarrierID)
	}
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}
	if w.ServiceID != nil {
		if _, ok := c.Service(*w.ServiceID); !ok {
			return nil, fmt.Errorf("%w: service %d is not offered by carrier %q", apperr.ErrInvalid, *w.ServiceID, c.Name)
		}
	}
	if w.BoxTypeID != nil {
		if _, ok := c.BoxType(*w.BoxTypeID); !ok {
			return nil, fmt.Errorf("%w: box type %d is not offered by carrier %q", apperr.ErrInvalid, *w.BoxTypeID, c.Name)
		}
	}
	return c, nil
}

// Next stores the carrier selection on the shipment, packs it, redistributes the override
// weight and quotes the selected carrier. The wizard moves to select_rate.
func (o *Orchestrator) Next(ctx context.Context, id string, sel Selection) (*Wizard, error) {
	w, err := o.session(id, StepStart)
	if err != nil {
		return nil, err
	}
	w.apply(sel)
	if w.OverrideWeight.IsNegative() {
		return nil, fmt.Errorf("%w: override weight %s is negative", apperr.ErrInvalid, w.OverrideWeight)
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	err = o.Repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		s, err := loadShipment(ctx, tx, w.ShipmentID)
		if err != nil {
			return err
		}
		if err := s.AllowLabelGeneration(); err != nil {
			return err
		}
		c, err := resolveCarrier(ctx, tx, w)
		if err != nil {
			return err
		}

		s.CarrierID = &c.ID
		s.ServiceID = w.ServiceID
		if err := tx.UpdateShipmentShipping(ctx, s.ID, s.Shipping); err != nil {
			return err
		}
		if err := o.Packer.EnsurePackaged(ctx, tx, s, w.BoxTypeID); err != nil {
			return err
		}
		previous, err := o.Packer.OverrideTotal(s, w.WeightUnit)
		if err != nil {
			return err
		}
		w.PreviousWeight = previous
		if err := o.Packer.RedistributeOverrideWeight(ctx, tx, s, w.OverrideWeight, previous, w.WeightUnit); err != nil {
			return err
		}
		if err := o.Packer.ReassignBoxType(ctx, tx, s, w.BoxTypeID); err != nil {
			return err
		}

		rates, err := o.Rates.GetShippingRates(ctx, tx, s, rating.Request{
			CarrierIDs: []int64{c.ID},
			ServiceID:  w.ServiceID,
			BoxTypeID:  w.BoxTypeID,
		})
		if err != nil {
			return err
		}
		domain.SortByCost(rates)
		w.Rates = rates
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.Step = StepSelectRate
	if err := o.Sessions.Put(w.ID, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Generate applies the chosen rate (index into the quoted rates, cheapest first) and calls the
// carrier's label generator. Tracking numbers and labels are stored in the same transaction.
func (o *Orchestrator) Generate(ctx context.Context, id string, choice int) (*Wizard, error) {
	w, err := o.session(id, StepSelectRate)
	if err != nil {
		return nil, err
	}
	if len(w.Rates) > 0 && (choice < 0 || choice >= len(w.Rates)) {
		return nil, fmt.Errorf("%w: rate %d out of %d", apperr.ErrInvalid, choice, len(w.Rates))
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	var method domain.CostMethod
	err = o.Repo.WithTx(ctx, func(tx shippingtx.Repository) error {
		s, err := loadShipment(ctx, tx, w.ShipmentID)
		if err != nil {
			return err
		}
		if err := s.AllowLabelGeneration(); err != nil {
			return err
		}
		c, err := resolveCarrier(ctx, tx, w)
		if err != nil {
			return err
		}
		method = c.CostMethod

		gen, ok := o.generator(c.CostMethod)
		if !ok {
			return fmt.Errorf("%w: label generation for cost method %q", apperr.ErrFeatureUnavailable, c.CostMethod)
		}

		if len(w.Rates) > 0 {
			if err := o.Applier.ApplyToShipment(ctx, tx, s, w.Rates[choice]); err != nil {
				return err
			}
		}

		res, err := gen.Generate(ctx, Request{Shipment: s, Carrier: *c, WeightUnit: w.WeightUnit})
		if err != nil {
			return fmt.Errorf("generate labels for %s: %w", s.Label(), err)
		}
		if res == nil || len(res.Numbers) == 0 {
			return fmt.Errorf("generate labels for %s: carrier returned no tracking number", s.Label())
		}

		return o.record(ctx, tx, w, s, c, res)
	})
	if err != nil {
		return nil, err
	}

	if o.Labels != nil {
		o.Labels.WithLabelValues(string(method)).Inc()
	}
	o.Logger.Info("labels generated",
		logx.Event("label_generated"),
		logx.Int64("shipment_id", w.ShipmentID),
		logx.String("tracking_number", w.TrackingNumber),
		logx.Int("attachments", len(w.AttachmentIDs)),
	)

	w.Step = StepGenerate
	if err := o.Sessions.Put(w.ID, w); err != nil {
		return nil, err
	}
	return w, nil
}

// record stores tracking numbers and labels and points the shipment at its master number.
func (o *Orchestrator) record(ctx context.Context, tx shippingtx.Repository, w *Wizard, s *domain.Shipment, c *domain.Carrier, res *Result) error {
	var shipmentNumber *domain.TrackingNumber
	for _, issued := range res.Numbers {
		origin := issued.Origin
		if origin == nil {
			origin = domain.ShipmentOrigin{ShipmentID: s.ID}
		}
		tn := &domain.TrackingNumber{
			Number:    issued.Number,
			CarrierID: c.ID,
			Origin:    origin,
			IsMaster:  issued.IsMaster,
			URL:       issued.URL,
			State:     domain.TrackingWaiting,
		}
		if err := tx.InsertTrackingNumber(ctx, tn); err != nil {
			return err
		}
		if shipmentNumber == nil || (tn.IsMaster && !shipmentNumber.IsMaster) {
			shipmentNumber = tn
		}
	}

	s.TrackingNumberID = &shipmentNumber.ID
	if err := tx.SetShipmentTracking(ctx, s.ID, s.TrackingNumberID); err != nil {
		return err
	}

	w.AttachmentIDs = w.AttachmentIDs[:0]
	for _, doc := range res.Labels {
		doc, err := NormalizeImage(doc)
		if err != nil {
			return err
		}
		origin := doc.Origin
		if origin == nil {
			origin = domain.ShipmentOrigin{ShipmentID: s.ID}
		}
		a := &domain.Attachment{Origin: origin, Name: doc.Name, MimeType: doc.MimeType, Data: doc.Data}
		if err := tx.InsertAttachment(ctx, a); err != nil {
			return err
		}
		w.AttachmentIDs = append(w.AttachmentIDs, a.ID)
	}

	if o.Logs != nil {
		text := fmt.Sprintf("Generated %d label(s), tracking number %s", len(res.Labels), shipmentNumber.Number)
		if _, err := o.Logs.Add(ctx, tx, s, c.ID, text); err != nil {
			return err
		}
	}

	w.TrackingNumberID = &shipmentNumber.ID
	w.TrackingNumber = shipmentNumber.Number
	w.Cost = s.Cost
	w.CostCurrency = s.CostCurrency
	return nil
}
