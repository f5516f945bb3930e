// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric unless configured otherwise.
const DefaultNamespace = "dividend_projection_lab"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	SimulationsTotal     *prometheus.CounterVec
	SimulationDuration   *prometheus.HistogramVec
	PeriodsSimulated     prometheus.Counter
	ValidationFailures   prometheus.Counter
	DegenerateRuns       prometheus.Counter
	ComparisonsTotal     prometheus.Counter
	ReportsGenerated     *prometheus.CounterVec
	VerificationsTotal   *prometheus.CounterVec
	RunsPurged           prometheus.Counter
	ActiveStreamSessions prometheus.Gauge

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun       prometheus.Gauge
	LastSuccessfulRetention prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a new Metrics instance registered on reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Simulation metrics
		SimulationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "simulations_total",
			Help:      "Total number of simulations by source and status",
		}, []string{"source", "status"}),
		SimulationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "simulation_duration_seconds",
			Help:      "Simulation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"source"}),
		PeriodsSimulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "periods_simulated_total",
			Help:      "Total number of periods simulated",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "validation_failures_total",
			Help:      "Total number of configurations rejected by validation",
		}),
		DegenerateRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "degenerate_runs_total",
			Help:      "Total number of simulations aborted on a degenerate price",
		}),
		ComparisonsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "comparisons_total",
			Help:      "Total number of multi-scenario comparisons",
		}),
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated by format",
		}, []string{"format"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "runs_verified_total",
			Help:      "Total number of stored runs re-verified by result",
		}, []string{"result"}),
		RunsPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "runs_purged_total",
			Help:      "Total number of runs removed by retention",
		}),
		ActiveStreamSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "stream_sessions",
			Help:      "Current number of open simulation stream sessions",
		}),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful persisted run",
		}),
		LastSuccessfulRetention: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_retention_timestamp",
			Help:      "Unix timestamp of last successful retention sweep",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// ForNamespace returns DefaultMetrics for the default namespace and a newly
// registered instance otherwise. Call it once per namespace.
func ForNamespace(namespace string) *Metrics {
	if namespace == "" || namespace == DefaultNamespace {
		return DefaultMetrics
	}
	return NewMetrics(namespace)
}

// Simulation outcome labels
const (
	StatusCompleted  = "completed"
	StatusInvalid    = "invalid"
	StatusDegenerate = "degenerate"
)

// RecordSimulation records one engine run.
func (m *Metrics) RecordSimulation(source, status string, periods int, durationSeconds float64) {
	m.SimulationsTotal.WithLabelValues(source, status).Inc()
	m.SimulationDuration.WithLabelValues(source).Observe(durationSeconds)
	m.PeriodsSimulated.Add(float64(periods))
	switch status {
	case StatusInvalid:
		m.ValidationFailures.Inc()
	case StatusDegenerate:
		m.DegenerateRuns.Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, code string, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSimulation records a simulation on the default metrics.
func RecordSimulation(source, status string, periods int, durationSeconds float64) {
	DefaultMetrics.RecordSimulation(source, status, periods, durationSeconds)
}

// RecordReport records a generated report on the default metrics.
func RecordReport(format string) {
	DefaultMetrics.ReportsGenerated.WithLabelValues(format).Inc()
}

// RecordVerification records a verification result on the default metrics.
func RecordVerification(ok bool) {
	result := "match"
	if !ok {
		result = "mismatch"
	}
	DefaultMetrics.VerificationsTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records database query metrics on the default metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.RecordDBQuery(database, operation, seconds, err)
}
