// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Workflow metrics
	WorkflowsTotal   *prometheus.CounterVec
	WorkflowDuration *prometheus.HistogramVec
	StageDuration    *prometheus.HistogramVec
	PendingPrepared  *prometheus.CounterVec
	PendingCompleted *prometheus.CounterVec

	// Upload metrics
	UploadsTotal *prometheus.CounterVec
	UploadBytes  prometheus.Counter

	// Solana metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Health metrics
	LastConfirmedWorkflow *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a Metrics instance registered on reg.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_launchpad"
	}
	factory := promauto.With(reg)

	return &Metrics{
		WorkflowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of finished workflows by kind and terminal state",
		}, []string{"kind", "state"}),
		WorkflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "duration_seconds",
			Help:      "Workflow duration from start to terminal state in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"kind"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each workflow stage in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "stage"}),
		PendingPrepared: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "pending_prepared_total",
			Help:      "Total number of partially-signed transactions handed to a wallet",
		}, []string{"kind"}),
		PendingCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "pending_completed_total",
			Help:      "Total number of complete calls by result",
		}, []string{"kind", "result"}),

		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "uploads_total",
			Help:      "Total number of uploads by artifact and status",
		}, []string{"artifact", "status"}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "uploaded_bytes_total",
			Help:      "Total number of bytes pinned",
		}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed Solana RPC calls",
		}, []string{"method"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"store", "operation"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		LastConfirmedWorkflow: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_confirmed_workflow_timestamp",
			Help:      "Unix timestamp of the last confirmed workflow by kind",
		}, []string{"kind"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordWorkflow records a finished workflow.
func (m *Metrics) RecordWorkflow(kind, state string, elapsed time.Duration) {
	m.WorkflowsTotal.WithLabelValues(kind, state).Inc()
	m.WorkflowDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if state == "confirmed" {
		m.LastConfirmedWorkflow.WithLabelValues(kind).SetToCurrentTime()
	}
}

// RecordStage records time spent in one workflow stage.
func (m *Metrics) RecordStage(kind, stage string, elapsed time.Duration) {
	m.StageDuration.WithLabelValues(kind, stage).Observe(elapsed.Seconds())
}

// RecordUpload records one pinning attempt.
func (m *Metrics) RecordUpload(artifact string, size int, err error) {
	if err != nil {
		m.UploadsTotal.WithLabelValues(artifact, "error").Inc()
		return
	}
	m.UploadsTotal.WithLabelValues(artifact, "ok").Inc()
	m.UploadBytes.Add(float64(size))
}

// RecordPrepared records a transaction handed to a wallet for signing.
func (m *Metrics) RecordPrepared(kind string) {
	m.PendingPrepared.WithLabelValues(kind).Inc()
}

// RecordCompleted records the result of a complete call.
func (m *Metrics) RecordCompleted(kind, result string) {
	m.PendingCompleted.WithLabelValues(kind, result).Inc()
}

// RecordRPCCall records RPC call latency. It matches the solana.WithObserver callback.
func (m *Metrics) RecordRPCCall(method string, elapsed time.Duration, err error) {
	m.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(store, operation string, elapsed time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(store, operation).Observe(elapsed.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, statusCode(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func statusCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
