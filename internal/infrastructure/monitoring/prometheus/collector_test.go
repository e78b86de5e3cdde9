package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "hilabs"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestCollector_CounterAppearsInScrape(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("clause_decisions_total", "decisions", "label", "rule")
	vec.WithLabelValues("Standard", "exact_norm").Inc()
	vec.WithLabelValues("Standard", "exact_norm").Add(2)

	body := scrape(t, c)
	assert.Contains(t, body, "hilabs_clause_decisions_total")
	assert.Contains(t, body, `label="Standard"`)
	assert.Contains(t, body, `rule="exact_norm"`)
}

func TestCollector_DuplicateRegistrationReusesMetric(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("contracts_uploaded_total", "uploads", "jurisdiction")
	second := c.RegisterCounter("contracts_uploaded_total", "uploads", "jurisdiction")

	first.WithLabelValues("TN").Inc()
	second.WithLabelValues("TN").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `hilabs_contracts_uploaded_total{jurisdiction="TN"} 2`)
}

func TestCollector_HistogramObserves(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("cascade_duration_seconds", "cascade", cascadeDurationBuckets, "jurisdiction")
	vec.WithLabelValues("WA").Observe(0.02)

	body := scrape(t, c)
	assert.Contains(t, body, "hilabs_cascade_duration_seconds_count")
	assert.True(t, strings.Contains(body, `jurisdiction="WA"`))
}

func TestCollector_GaugeSetAndMove(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterGauge("classification_queue_depth", "depth", "topic")
	g := vec.WithLabelValues("contract.classification.requested")
	g.Set(5)
	g.Inc()
	g.Dec()

	body := scrape(t, c)
	assert.Contains(t, body, `hilabs_classification_queue_depth{topic="contract.classification.requested"} 5`)
}

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ContractsProcessedTotal.WithLabelValues("TN", "classified").Inc()
	m.ClauseDecisionsTotal.WithLabelValues("Ambiguous", "semantic_ambiguous").Inc()
	m.ModelRequestDuration.WithLabelValues("all-MiniLM-L6-v2").Observe(0.1)

	body := scrape(t, c)
	assert.Contains(t, body, "hilabs_contracts_processed_total")
	assert.Contains(t, body, "hilabs_clause_decisions_total")
	assert.Contains(t, body, "hilabs_model_request_duration_seconds_count")
}

func TestTimer_NilHistogramSafe(t *testing.T) {
	timer := NewTimer(nil)
	assert.NotPanics(t, timer.ObserveDuration)
}
