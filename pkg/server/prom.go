package server

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promInitialized              uint32
	promConnectionsActive        = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "connections_active"}, []string{"name"})
	promConnectionsAcceptedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "connections_accepted_total"}, []string{"name"})
	promConnectionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "connections_rejected_total"}, []string{"name"})
	promConnectionsClosedTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "connections_closed_total"}, []string{"name", "reason"})
	promRequestsTotal            = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total"}, []string{"name", "method", "version", "keepalive"})
	promRequestDurationSeconds   = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "request_duration_seconds"}, []string{"name"})
	promReadBytesTotal           = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "read_bytes_total"}, []string{"name"})
	promWriteBytesTotal          = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "write_bytes_total"}, []string{"name"})
)

// PromInitialize registers the server metrics under namespace. Until it is called, metrics are
// collected but not registered.
func PromInitialize(namespace string) {
	if !atomic.CompareAndSwapUint32(&promInitialized, 0, 1) {
		panic("prometheus already set")
	}

	histogramBuckets := []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	promConnectionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "connections_active",
	}, []string{"name"})

	promConnectionsAcceptedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "connections_accepted_total",
	}, []string{"name"})

	promConnectionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "connections_rejected_total",
	}, []string{"name"})

	promConnectionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "connections_closed_total",
	}, []string{"name", "reason"})

	promRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "requests_total",
	}, []string{"name", "method", "version", "keepalive"})

	promRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "request_duration_seconds",
		Buckets:   histogramBuckets,
	}, []string{"name"})

	promReadBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "read_bytes_total",
	}, []string{"name"})

	promWriteBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_server",
		Name:      "write_bytes_total",
	}, []string{"name"})
}

// serverMetrics holds the metrics curried with the server name.
type serverMetrics struct {
	connectionsActive        prometheus.Gauge
	connectionsAcceptedTotal prometheus.Counter
	connectionsRejectedTotal prometheus.Counter
	connectionsClosedTotal   *prometheus.CounterVec
	requestsTotal            *prometheus.CounterVec
	requestDurationSeconds   prometheus.Observer
	readBytesTotal           prometheus.Counter
	writeBytesTotal          prometheus.Counter
}

func newServerMetrics(name string) *serverMetrics {
	promLabels := prometheus.Labels{"name": name}
	return &serverMetrics{
		connectionsActive:        promConnectionsActive.With(promLabels),
		connectionsAcceptedTotal: promConnectionsAcceptedTotal.With(promLabels),
		connectionsRejectedTotal: promConnectionsRejectedTotal.With(promLabels),
		connectionsClosedTotal:   promConnectionsClosedTotal.MustCurryWith(promLabels),
		requestsTotal:            promRequestsTotal.MustCurryWith(promLabels),
		requestDurationSeconds:   promRequestDurationSeconds.With(promLabels),
		readBytesTotal:           promReadBytesTotal.With(promLabels),
		writeBytesTotal:          promWriteBytesTotal.With(promLabels),
	}
}
