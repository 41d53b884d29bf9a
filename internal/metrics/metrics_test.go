package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCatalogBackend(t *testing.T) {
	before := testutil.ToFloat64(catalogFallback)

	RecordCatalogBackend("fallback", true)
	RecordCatalogBackend("primary", false)

	assert.Equal(t, before+1, testutil.ToFloat64(catalogFallback))
	assert.GreaterOrEqual(t, testutil.ToFloat64(catalogBackend.WithLabelValues("primary")), 1.0)
}

func TestRecordOrderSubmission(t *testing.T) {
	before := testutil.ToFloat64(ordersSubmitted.WithLabelValues("rejected"))

	RecordOrderSubmission("rejected", 0)

	assert.Equal(t, before+1, testutil.ToFloat64(ordersSubmitted.WithLabelValues("rejected")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordHTTPRequest("GET", "/api/v1/products", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "amaretto_http_requests_total")
}
