package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/graphedit/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors.
type Metrics struct {
	mutations      *prometheus.CounterVec
	nodes          prometheus.Gauge
	edges          prometheus.Gauge
	deleted        *prometheus.CounterVec
	imports        *prometheus.CounterVec
	importDuration prometheus.Histogram
	exportBytes    prometheus.Histogram

	loads        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	removes      *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streams         prometheus.Gauge
}

// NewMetrics registers the graphedit collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_mutations_total",
			Help: "Atomic graph store updates by operation.",
		}, []string{"op"}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphedit_nodes",
			Help: "Nodes in the current graph.",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphedit_edges",
			Help: "Edges in the current graph.",
		}),
		deleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_deleted_total",
			Help: "Elements removed by cascading deletion.",
		}, []string{"kind"}),
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_imports_total",
			Help: "Import attempts by result.",
		}, []string{"result"}),
		importDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphedit_import_duration_seconds",
			Help:    "Time to read, parse and apply an import.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		exportBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphedit_export_bytes",
			Help:    "Size of exported documents.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_storage_loads_total",
			Help: "Initial load attempts by result.",
		}, []string{"result"}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_storage_saves_total",
			Help: "Auto-save writes by result.",
		}, []string{"result"}),
		saveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphedit_storage_save_duration_seconds",
			Help:    "Auto-save write latency.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		removes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_storage_removes_total",
			Help: "Removals of the persisted graph by result.",
		}, []string{"result"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "graphedit_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphedit_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		streams: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphedit_ws_clients",
			Help: "Connected websocket clients.",
		}),
	}
}

// Register installs m as the global editor, storage and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetEditorHooks(m)
	observability.SetStorageHooks(m)
	observability.SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnMutation implements observability.EditorHooks.
func (m *Metrics) OnMutation(_ context.Context, op string, nodeCount, edgeCount int) {
	m.mutations.WithLabelValues(op).Inc()
	m.nodes.Set(float64(nodeCount))
	m.edges.Set(float64(edgeCount))
}

// OnDelete implements observability.EditorHooks.
func (m *Metrics) OnDelete(_ context.Context, nodes, edges int) {
	m.deleted.WithLabelValues("node").Add(float64(nodes))
	m.deleted.WithLabelValues("edge").Add(float64(edges))
}

// OnImport implements observability.EditorHooks.
func (m *Metrics) OnImport(_ context.Context, _, _ int, d time.Duration, err error) {
	m.imports.WithLabelValues(result(err)).Inc()
	m.importDuration.Observe(d.Seconds())
}

// OnExport implements observability.EditorHooks.
func (m *Metrics) OnExport(_ context.Context, size int) {
	m.exportBytes.Observe(float64(size))
}

// OnLoad implements observability.StorageHooks.
func (m *Metrics) OnLoad(_ context.Context, found bool, _ int, _ time.Duration, err error) {
	switch {
	case err != nil:
		m.loads.WithLabelValues("error").Inc()
	case found:
		m.loads.WithLabelValues("found").Inc()
	default:
		m.loads.WithLabelValues("empty").Inc()
	}
}

// OnSave implements observability.StorageHooks.
func (m *Metrics) OnSave(_ context.Context, _ int, d time.Duration, err error) {
	m.saves.WithLabelValues(result(err)).Inc()
	m.saveDuration.Observe(d.Seconds())
}

// OnRemove implements observability.StorageHooks.
func (m *Metrics) OnRemove(_ context.Context, err error) {
	m.removes.WithLabelValues(result(err)).Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// OnStream implements observability.HTTPHooks.
func (m *Metrics) OnStream(_ context.Context, delta int) {
	m.streams.Add(float64(delta))
}

var (
	_ observability.EditorHooks  = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
