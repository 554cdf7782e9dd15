package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.Started()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight))

	m.Observe(http.MethodGet, "/flights", http.StatusOK, 20*time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/flights", "200")))

	m.Started()
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Started()
	m.Observe(http.MethodPost, "/reservations/book", http.StatusCreated, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `flightdesk_http_requests_total{code="201",method="POST",route="/reservations/book"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
