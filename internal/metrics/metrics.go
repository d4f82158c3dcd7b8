package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tinyd"

// Metrics holds the server collectors. Every instance has its own registry, so several
// servers may coexist in one process.
type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Counter
	active      prometheus.Gauge
	requests    prometheus.Counter
	parseErrors *prometheus.CounterVec
	fills       prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		connections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted connections",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently served connections",
		}),
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of parsed and responded requests",
		}),
		parseErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total number of requests failed to be parsed",
		}, []string{"reason"}),
		fills: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "fills_total",
			Help:      "Total number of reads into connection buffers",
		}),
	}
}

func (m *Metrics) Connected() {
	m.connections.Inc()
	m.active.Inc()
}

func (m *Metrics) Disconnected() {
	m.active.Dec()
}

func (m *Metrics) Request() {
	m.requests.Inc()
}

func (m *Metrics) ParseError(reason string) {
	m.parseErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) Fill() {
	m.fills.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the exposition handler, serving metrics in the text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
