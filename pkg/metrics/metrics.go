// Package metrics exposes Prometheus collectors for searches.
package metrics

import (
	"net/http"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a dedicated registry so tests and embedders never touch the global one.
type Collector struct {
	registry      *prometheus.Registry
	searches      *prometheus.CounterVec
	iterations    prometheus.Histogram
	duration      prometheus.Histogram
	compileErrors prometheus.Counter
}

// New creates the collectors and registers them, along with the Go and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gss_searches_total",
				Help: "Total number of searches by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gss_search_iterations",
				Help:    "Iterations performed per search",
				Buckets: []float64{5, 10, 20, 30, 50, 100, 200, 500},
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gss_search_duration_seconds",
				Help:    "Wall time of the search loop",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		compileErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gss_compile_errors_total",
				Help: "Expressions rejected by the compiler",
			},
		),
	}

	c.registry.MustRegister(
		c.searches, c.iterations, c.duration, c.compileErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Hooks returns search hooks that feed the collectors.
func (c *Collector) Hooks() domain.SearchHooks {
	return domain.SearchHooks{
		OnFinish: c.observe,
	}
}

func (c *Collector) observe(e *domain.SearchEvent) {
	status := "error"
	if e.Err != nil {
		status = string(domain.KindOf(e.Err))
	} else if e.Result != nil {
		status = string(e.Result.Status)
	}
	c.searches.WithLabelValues(string(e.Request.Mode), status).Inc()
	c.duration.Observe(e.Duration.Seconds())
	if e.Result != nil {
		c.iterations.Observe(float64(e.Result.IterationCount))
	}
}

// CompileError counts one rejected expression.
func (c *Collector) CompileError() {
	c.compileErrors.Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
