package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shipping-carrier-service/internal/http/handlers"
	obs "shipping-carrier-service/internal/http/middleware"
	"shipping-carrier-service/internal/logx"
)

const (
	localTimeout   = 5 * time.Second
	carrierTimeout = 60 * time.Second
)

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Base      *handlers.Handlers
	Carriers  *handlers.CarrierHandler
	Shipping  *handlers.ShippingHandler
	Labels    *handlers.LabelHandler
	Tracking  *handlers.TrackingHandler
	Manifests *handlers.ManifestHandler
	Addresses *handlers.AddressHandler
}

// New constructs a chi-based http.Handler with base middleware and routes.
// Routes that reach carrier APIs get a longer timeout; quoteLimit, when set, throttles rate quotes.
func New(logger logx.Logger, h Handlers, quoteLimit func(http.Handler) http.Handler) http.Handler {
	if quoteLimit == nil {
		quoteLimit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.Base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(h.Base.NotFound))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(localTimeout))

		r.Get("/carriers", h.Carriers.List)
		r.Get("/carriers/{id}", h.Carriers.GetByID)

		r.Post("/shipments/{id}/rates/apply", h.Shipping.ApplyShipmentRate)
		r.Post("/shipments/{id}/copy", h.Shipping.CopyShipment)
		r.Post("/shipments/{id}/cancel", h.Shipping.CancelShipment)
		r.Get("/shipments/{id}/weight", h.Shipping.ShipmentWeight)
		r.Post("/sales/{id}/rates/apply", h.Shipping.ApplySaleRate)
		r.Get("/sales/{id}/weight", h.Shipping.SaleWeight)

		r.Get("/tracking-numbers/{id}", h.Tracking.Get)
		r.Get("/packages/{id}/tracking-number", h.Tracking.PackageTracking)

		r.Post("/manifests", h.Manifests.Open)
		r.Get("/manifests/{id}", h.Manifests.Get)
		r.Post("/manifests/{id}/close", h.Manifests.Close)
		r.Post("/manifests/{id}/shipments", h.Manifests.AddShipment)

		r.Get("/label-wizard/{session}", h.Labels.Get)
		r.Delete("/label-wizard/{session}", h.Labels.End)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(carrierTimeout))

		r.With(quoteLimit).Post("/shipments/{id}/rates", h.Shipping.QuoteShipment)
		r.With(quoteLimit).Post("/sales/{id}/rates", h.Shipping.QuoteSale)

		r.Post("/shipments/{id}/label-wizard", h.Labels.Start)
		r.Post("/label-wizard/{session}/next", h.Labels.Next)
		r.Post("/label-wizard/{session}/generate", h.Labels.Generate)

		r.Post("/tracking-numbers/{id}/cancel", h.Tracking.Cancel)
		r.Post("/tracking-numbers/{id}/refresh", h.Tracking.Refresh)

		r.Post("/addresses/validate", h.Addresses.Validate)
	})

	return r
}
