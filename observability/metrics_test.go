package observability

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, m.Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestBatchItemsTotal(t *testing.T) {
	c := BatchItemsTotal.WithLabelValues("install", "successful")
	before := counterValue(t, c)

	BatchItemsTotal.WithLabelValues("install", "successful").Inc()

	require.Equal(t, before+1, counterValue(t, c))
}

func TestProviderCallsTotal(t *testing.T) {
	c := ProviderCallsTotal.WithLabelValues("npm", "list_versions", "ok")
	before := counterValue(t, c)

	ProviderCallsTotal.WithLabelValues("npm", "list_versions", "ok").Inc()
	ProviderCallsTotal.WithLabelValues("npm", "list_versions", "ok").Inc()

	require.Equal(t, before+2, counterValue(t, c))
}

func TestMetricsHandler(t *testing.T) {
	ResolutionsTotal.WithLabelValues("npm", "success").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	MetricsHandler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "unipkg_resolutions_total")
}
