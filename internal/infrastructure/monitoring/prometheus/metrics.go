package prometheus

// AppMetrics is the platform's metric set, grouped by pipeline stage.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Contract pipeline
	ContractsUploadedTotal  CounterVec
	ContractsProcessedTotal CounterVec
	ClassificationDuration  HistogramVec
	QueueDepth              GaugeVec

	// Cascade
	ClauseDecisionsTotal CounterVec
	CascadeDuration      HistogramVec

	// Model serving
	ModelRequestsTotal   CounterVec
	ModelRequestDuration HistogramVec
	EmbeddingCacheHits   CounterVec
	EmbeddingCacheMisses CounterVec
}

var (
	httpDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	pipelineDurationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300}
	cascadeDurationBuckets  = []float64{.001, .005, .01, .05, .1, .5, 1, 5}
	modelDurationBuckets    = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// NewAppMetrics registers the full metric set on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: collector.RegisterCounter(
			"http_requests_total", "Total HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram(
			"http_request_duration_seconds", "HTTP request duration", httpDurationBuckets, "method", "path"),

		ContractsUploadedTotal: collector.RegisterCounter(
			"contracts_uploaded_total", "Contracts accepted for classification", "jurisdiction"),
		ContractsProcessedTotal: collector.RegisterCounter(
			"contracts_processed_total", "Contracts finished by the worker", "jurisdiction", "status"),
		ClassificationDuration: collector.RegisterHistogram(
			"classification_duration_seconds", "End-to-end classification run duration", pipelineDurationBuckets, "jurisdiction"),
		QueueDepth: collector.RegisterGauge(
			"classification_queue_depth", "Contracts awaiting classification", "topic"),

		ClauseDecisionsTotal: collector.RegisterCounter(
			"clause_decisions_total", "Clause decisions by label and deciding rule", "label", "rule"),
		CascadeDuration: collector.RegisterHistogram(
			"cascade_duration_seconds", "Per-clause cascade evaluation duration", cascadeDurationBuckets, "jurisdiction"),

		ModelRequestsTotal: collector.RegisterCounter(
			"model_requests_total", "Model server requests", "model", "status"),
		ModelRequestDuration: collector.RegisterHistogram(
			"model_request_duration_seconds", "Model server request duration", modelDurationBuckets, "model"),
		EmbeddingCacheHits: collector.RegisterCounter(
			"embedding_cache_hits_total", "Embedding cache hits", "model"),
		EmbeddingCacheMisses: collector.RegisterCounter(
			"embedding_cache_misses_total", "Embedding cache misses", "model"),
	}
}
