package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New()

	m.RecordDocument("success")
	m.RecordDocument("success")
	m.RecordDocument("unsupported_format")
	m.RecordProviderCall("openai-chat", true)
	m.RecordProviderCall("openai-chat", false)
	m.RecordCacheLookup("hit")
	m.ObserveStage("extract", 20*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.documents.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documents.WithLabelValues("unsupported_format")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.providerCalls.WithLabelValues("openai-chat", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")), 0)
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.RecordDocument("success")
	m.ObserveStage("summarize", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `docsummarizer_documents_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "docsummarizer_stage_duration_seconds_bucket")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordDocument("success")
		m.ObserveStage("extract", time.Second)
		m.RecordProviderCall("gemini", true)
		m.RecordCacheLookup("miss")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
