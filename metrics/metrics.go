// Package metrics instruments relaxavro decoders with Prometheus counters and
// latency histograms.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "relaxavro"

// Metrics owns a private registry and the decode collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	decodes  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	encodes  *prometheus.CounterVec
}

// New builds the collectors and registers them under cfg's namespace and
// service label.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)
	}
	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m := &Metrics{
		Registry: registry,
		decodes: createCounterVec(cfg.Namespace, "decodes_total",
			"Decode calls by schema, mode and outcome.", []string{"schema", "mode", "outcome"}),
		failures: createCounterVec(cfg.Namespace, "decode_errors_total",
			"Failed decode calls by schema and error code.", []string{"schema", "code"}),
		duration: createHistogramVec(cfg.Namespace, "decode_duration_seconds",
			"Decode latency by schema and mode.", []string{"schema", "mode"}, prometheus.DefBuckets),
		encodes: createCounterVec(cfg.Namespace, "encodes_total",
			"Encode calls by schema and outcome.", []string{"schema", "outcome"}),
	}
	registerer.MustRegister(m.decodes, m.failures, m.duration, m.encodes)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Server returns an HTTP server exposing Handler at /metrics on cfg.Address.
func (m *Metrics) Server(cfg Config) *http.Server {
	addr := cfg.Address
	if addr == "" {
		addr = DefaultAddress
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
