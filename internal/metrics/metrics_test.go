package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/metrics"
)

func TestNewRegistry_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := metrics.NewRegistry(reg)
	require.NoError(t, err)

	r.RateQuotes.WithLabelValues("product", "ok").Inc()
	r.RefreshRetries.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(r.RateQuotes.WithLabelValues("product", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.RefreshRetries))

	_, err = metrics.NewRegistry(reg)
	require.Error(t, err)
}
