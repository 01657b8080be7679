package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateQuotesTotal returns a counter of carrier quotes by cost method and outcome (ok, skipped, error).
func NewRateQuotesTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_rate_quotes_total",
		Help: "Total number of carrier rate quotes by cost method and outcome",
	}, []string{"cost_method", "outcome"})
}

// NewTrackingRefreshTotal returns a counter of tracking refresh attempts by source and outcome.
func NewTrackingRefreshTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_refresh_total",
		Help: "Total number of tracking number refreshes by source and outcome",
	}, []string{"source", "outcome"})
}

// NewTrackingRefreshRetriesTotal returns a counter for retry attempts against carrier tracking APIs.
func NewTrackingRefreshRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_refresh_retries_total",
		Help: "Total number of retry attempts performed against carrier tracking APIs",
	})
}

// NewLabelsGeneratedTotal returns a counter of generated shipping labels by cost method.
func NewLabelsGeneratedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_labels_generated_total",
		Help: "Total number of shipments labelled by cost method",
	}, []string{"cost_method"})
}

// NewQuotesThrottledTotal returns a counter of quote requests refused by the per-client throttle.
func NewQuotesThrottledTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shipping_quotes_throttled_total",
		Help: "Total number of rate quote requests refused by the per-client throttle",
	})
}

// Registry holds the domain collectors shared by the API and the worker.
type Registry struct {
	RateQuotes      *prometheus.CounterVec
	TrackingRefresh *prometheus.CounterVec
	RefreshRetries  prometheus.Counter
	LabelsGenerated *prometheus.CounterVec
	QuotesThrottled prometheus.Counter
}

// NewRegistry creates the collectors and registers them with reg.
func NewRegistry(reg prometheus.Registerer) (*Registry, error) {
	r := &Registry{
		RateQuotes:      NewRateQuotesTotal(),
		TrackingRefresh: NewTrackingRefreshTotal(),
		RefreshRetries:  NewTrackingRefreshRetriesTotal(),
		LabelsGenerated: NewLabelsGeneratedTotal(),
		QuotesThrottled: NewQuotesThrottledTotal(),
	}
	for _, c := range []prometheus.Collector{r.RateQuotes, r.TrackingRefresh, r.RefreshRetries, r.LabelsGenerated, r.QuotesThrottled} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}
