package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tandem/pkg/domain"
)

// Metrics records engine activity.
type Metrics struct {
	registry    *prometheus.Registry
	loads       *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	nodes       prometheus.Histogram
	files       prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry, alongside the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tandem_loads_total",
				Help: "Dependency graph loads.",
			},
			// forced: reload after an edit
			// errorful: did the load fail
			[]string{"forced", "errorful"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tandem_evaluations_total",
				Help: "Document evaluations.",
			},
			[]string{"errorful"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tandem_operation_duration_seconds",
				Help:    "Duration of loads and evaluations.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"},
		),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tandem_evaluated_nodes",
			Help:    "Size of evaluated trees.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tandem_loaded_files",
			Help: "Files currently held in the dependency graph.",
		}),
	}
	m.registry.MustRegister(
		m.loads, m.evaluations, m.duration, m.nodes, m.files,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			m.loads.WithLabelValues(strconv.FormatBool(e.Forced), strconv.FormatBool(e.Err != nil)).Inc()
			m.duration.WithLabelValues(string(domain.EventLoad)).Observe(e.Duration.Seconds())
			m.files.Set(float64(e.Files))
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			m.evaluations.WithLabelValues(strconv.FormatBool(e.Err != nil)).Inc()
			m.duration.WithLabelValues(string(domain.EventEvaluate)).Observe(e.Duration.Seconds())
			if e.Err == nil {
				m.nodes.Observe(float64(e.Nodes))
			}
		},
	}
}
