package prometheus

// AppMetrics holds all application metrics, registered once at startup and
// shared by reference across components.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Fingerprint store
	FingerprintBuildsTotal   CounterVec
	FingerprintBuildDuration HistogramVec
	FingerprintBuildFailures CounterVec
	StoreSize                GaugeVec

	// Classification
	ClassificationRunsTotal CounterVec
	ClassificationDuration  HistogramVec
	PredictionsTotal        CounterVec
	SimilarityScores        HistogramVec

	// Evaluation
	EvaluationsTotal   CounterVec
	EvaluationDuration HistogramVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBuildDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultScoreBuckets         = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// NewAppMetrics registers all platform metrics on the collector and returns
// the populated AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Fingerprint store
	m.FingerprintBuildsTotal = collector.RegisterCounter("fingerprint_builds_total", "Fingerprint store builds", "fingerprint_type", "status")
	m.FingerprintBuildDuration = collector.RegisterHistogram("fingerprint_build_duration_seconds", "Fingerprint store build duration", DefaultBuildDurationBuckets, "fingerprint_type")
	m.FingerprintBuildFailures = collector.RegisterCounter("fingerprint_build_failures_total", "Compounds dropped during store builds", "fingerprint_type")
	m.StoreSize = collector.RegisterGauge("fingerprint_store_size", "Compounds held in the active fingerprint store", "role")

	// Classification
	m.ClassificationRunsTotal = collector.RegisterCounter("classification_runs_total", "Classification runs", "mode", "status")
	m.ClassificationDuration = collector.RegisterHistogram("classification_duration_seconds", "Classification run duration", DefaultBuildDurationBuckets, "mode")
	m.PredictionsTotal = collector.RegisterCounter("predictions_total", "Per-compound predictions", "outcome")
	m.SimilarityScores = collector.RegisterHistogram("similarity_scores", "Nearest-neighbor similarity scores", DefaultScoreBuckets, "metric")

	// Evaluation
	m.EvaluationsTotal = collector.RegisterCounter("evaluations_total", "Evaluation report computations", "status")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "Evaluation report computation duration", DefaultHTTPDurationBuckets)

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1 healthy, 0 unhealthy)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by code", "code")

	return m
}
