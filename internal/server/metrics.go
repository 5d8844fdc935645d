package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// Metrics is a Prometheus collector fed by the observability hooks.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	editorOps *prometheus.CounterVec

	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
	storageBytes    prometheus.Counter
}

var (
	_ observability.EditorHooks  = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)

// NewMetrics creates a collector with its own registry. Metric names are
// prefixed with namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		editorOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "editor_operations_total",
				Help:      "Total number of editor commands",
			},
			[]string{"operation", "node_type", "status"},
		),
		storageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of key-value store operations",
			},
			[]string{"backend", "operation", "status"},
		),
		storageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Key-value store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
		storageBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_written_bytes_total",
				Help:      "Total bytes written to the store",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.editorOps,
		m.storageOps,
		m.storageDuration,
		m.storageBytes,
	)
	return m
}

// Register installs m as the editor, storage and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetEditorHooks(m)
	observability.SetStorageHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnOperation implements observability.EditorHooks.
func (m *Metrics) OnOperation(_ context.Context, op, nodeType string, err error) {
	m.editorOps.WithLabelValues(op, nodeType, status(err)).Inc()
}

// OnRead implements observability.StorageHooks.
func (m *Metrics) OnRead(_ context.Context, backend string, hit bool, d time.Duration, err error) {
	st := status(err)
	if err == nil && !hit {
		st = "miss"
	}
	m.storageOps.WithLabelValues(backend, "read", st).Inc()
	m.storageDuration.WithLabelValues(backend, "read").Observe(d.Seconds())
}

// OnWrite implements observability.StorageHooks.
func (m *Metrics) OnWrite(_ context.Context, backend string, size int, d time.Duration, err error) {
	m.storageOps.WithLabelValues(backend, "write", status(err)).Inc()
	m.storageDuration.WithLabelValues(backend, "write").Observe(d.Seconds())
	if err == nil {
		m.storageBytes.Add(float64(size))
	}
}

// OnDelete implements observability.StorageHooks.
func (m *Metrics) OnDelete(_ context.Context, backend string, d time.Duration, err error) {
	m.storageOps.WithLabelValues(backend, "delete", status(err)).Inc()
	m.storageDuration.WithLabelValues(backend, "delete").Observe(d.Seconds())
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
