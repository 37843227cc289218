package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the HTTP server exposing
// it, plus the library's built-in instruments.
type Metrics struct {
	// Server serves the /metrics endpoint.
	Server *http.Server

	// Registry is the isolated Prometheus registry for this instance.
	// Isolation prevents collisions when several services share a process.
	Registry *prometheus.Registry

	registerer prometheus.Registerer

	imagesEmbedded      prometheus.Counter
	embeddingsGenerated *prometheus.CounterVec
	alignmentRuns       *prometheus.CounterVec
	alignmentSteps      prometheus.Counter
	alignmentDuration   prometheus.Histogram
}

// NewMetrics builds a Metrics instance from Config.
//
// The registry is wrapped so every metric carries service="<cfg.ServiceName>".
// Default runtime collectors are included when cfg.EnableDefaultCollectors is
// set. The returned instance's Server is constructed but not started; the fx
// lifecycle (or the caller) is responsible for running it.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
	}

	m.imagesEmbedded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesthetic_images_embedded_total",
		Help: "Total number of images pushed through the vision encoder",
	})
	m.embeddingsGenerated = createCounterVec("aesthetic_embeddings_generated_total",
		"Total number of aesthetic embedding generation runs", []string{"status"})
	m.alignmentRuns = createCounterVec("aesthetic_alignment_runs_total",
		"Total number of text alignment invocations", []string{"status"})
	m.alignmentSteps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesthetic_alignment_steps_total",
		Help: "Total number of optimizer steps executed during alignment",
	})
	m.alignmentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aesthetic_alignment_duration_seconds",
		Help:    "Duration of per-request text alignment in seconds",
		Buckets: prometheus.DefBuckets,
	})

	wrapped.MustRegister(
		m.imagesEmbedded,
		m.embeddingsGenerated,
		m.alignmentRuns,
		m.alignmentSteps,
		m.alignmentDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return m
}
