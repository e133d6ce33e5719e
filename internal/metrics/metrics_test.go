package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.RequestDuration)
	assert.NotNil(t, m.SourceResults)
	assert.NotNil(t, m.SubQueryFailures)
	assert.NotNil(t, m.CacheEvents)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("activity", "200")
	m.RecordRequest("activity", "200")
	m.RecordRequest("metrics", "400")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `dashd_requests_total{route="activity",status="200"} 2`)
	assert.Contains(t, body, `dashd_requests_total{route="metrics",status="400"} 1`)
}

func TestMetrics_RecordSource(t *testing.T) {
	m := New()
	m.RecordSource("cache")
	m.RecordSource("fallback")
	m.RecordSource("cache")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `dashd_source_results_total{provenance="cache"} 2`)
	assert.Contains(t, body, `dashd_source_results_total{provenance="fallback"} 1`)
}

func TestMetrics_RecordSubQueryFailure(t *testing.T) {
	m := New()
	m.RecordSubQueryFailure("projects")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `dashd_subquery_failures_total{operation="projects"} 1`)
}

func TestMetrics_RecordCacheEvent(t *testing.T) {
	m := New()
	m.RecordCacheEvent("snapshot", "hit")
	m.RecordCacheEvent("snapshot", "absent")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `dashd_cache_events_total{cache="snapshot",event="hit"} 1`)
	assert.Contains(t, body, `dashd_cache_events_total{cache="snapshot",event="absent"} 1`)
}

func TestMetrics_ObserveDuration(t *testing.T) {
	m := New()
	m.ObserveDuration("activity", 0.02)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, "dashd_request_duration_seconds")
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	handler := m.Handler()
	assert.NotNil(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	return strings.TrimSpace(string(body))
}
