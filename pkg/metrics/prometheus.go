// Package metrics provides Prometheus metrics for the sync pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Job pipeline
	jobsProcessed *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	pendingJobs   prometheus.Gauge
	loopState     *prometheus.GaugeVec

	// Provider fetches
	providerCalls       *prometheus.CounterVec
	providerRetries     prometheus.Counter
	providerRateLimited prometheus.Counter
	providerPages       prometheus.Counter

	// Aggregation and recommendations
	metricRowsUpserted   prometheus.Counter
	recommendationsBuilt prometheus.Counter
	batchEntityFailures  prometheus.Counter

	// Compute lifecycle
	lifecycleOps *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager builds a Manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "ffa",
		subsystem: "pipeline",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.jobsProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "jobs_processed_total",
		Help:      "Jobs moved to a terminal state, by name and status.",
	}, []string{"name", "status"})

	m.jobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_duration_seconds",
		Help:      "Wall-clock job execution time by name.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"name"})

	m.pendingJobs = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_jobs",
		Help:      "Jobs waiting in the queue.",
	})

	m.loopState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_state",
		Help:      "Current worker loop state (1 for active state, 0 otherwise).",
	}, []string{"state"})

	m.providerCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_calls_total",
		Help:      "Outbound provider calls by outcome.",
	}, []string{"outcome"})

	m.providerRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_retries_total",
		Help:      "Provider call attempts beyond the first.",
	})

	m.providerRateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_rate_limited_total",
		Help:      "HTTP 429 responses from the provider.",
	})

	m.providerPages = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_pages_total",
		Help:      "Pages fetched through the pagination loop.",
	})

	m.metricRowsUpserted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metric_rows_upserted_total",
		Help:      "Population metric rows written by compute jobs.",
	})

	m.recommendationsBuilt = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_built_total",
		Help:      "Recommendation entries produced.",
	})

	m.batchEntityFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_entity_failures_total",
		Help:      "Entities dropped from a concurrent sub-batch after an error.",
	})

	m.lifecycleOps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lifecycle_ops_total",
		Help:      "Compute control API operations by op and outcome.",
	}, []string{"op", "outcome"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and code.",
	}, []string{"route", "code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	return m
}

// GetRegistry returns the registry behind the global manager, for serving
// the /metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordJobProcessed(name, status string) {
	globalManager.jobsProcessed.WithLabelValues(name, status).Inc()
}

func ObserveJobDuration(name string, d time.Duration) {
	globalManager.jobDuration.WithLabelValues(name).Observe(d.Seconds())
}

func UpdatePendingJobs(n int) {
	globalManager.pendingJobs.Set(float64(n))
}

// UpdateWorkerState marks state as the single active loop state.
func UpdateWorkerState(state string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1.0
		}
		globalManager.loopState.WithLabelValues(s).Set(v)
	}
}

func RecordProviderCall(outcome string) {
	globalManager.providerCalls.WithLabelValues(outcome).Inc()
}

func RecordProviderRetry() {
	globalManager.providerRetries.Inc()
}

func RecordProviderRateLimited() {
	globalManager.providerRateLimited.Inc()
}

func RecordProviderPage() {
	globalManager.providerPages.Inc()
}

func RecordMetricRowUpserted() {
	globalManager.metricRowsUpserted.Inc()
}

func RecordRecommendationBuilt() {
	globalManager.recommendationsBuilt.Inc()
}

func RecordBatchEntityFailure() {
	globalManager.batchEntityFailures.Inc()
}

func RecordLifecycleOp(op, outcome string) {
	globalManager.lifecycleOps.WithLabelValues(op, outcome).Inc()
}

func RecordHTTPRequest(route, code string) {
	globalManager.httpRequests.WithLabelValues(route, code).Inc()
}

func ObserveHTTPRequestDuration(route string, d time.Duration) {
	globalManager.httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
