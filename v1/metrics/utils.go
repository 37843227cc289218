package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CountImagesEmbedded adds n to the embedded-image counter.
func (m *Metrics) CountImagesEmbedded(n int) {
	if m == nil {
		return
	}
	m.imagesEmbedded.Add(float64(n))
}

// CountEmbeddingGenerated increments the generation-run counter.
// Status is one of "completed", "interrupted", or "failed".
func (m *Metrics) CountEmbeddingGenerated(status string) {
	if m == nil {
		return
	}
	m.embeddingsGenerated.WithLabelValues(status).Inc()
}

// CountAlignmentRun increments the alignment-invocation counter.
// Status is one of "adjusted", "skipped", or "failed".
func (m *Metrics) CountAlignmentRun(status string) {
	if m == nil {
		return
	}
	m.alignmentRuns.WithLabelValues(status).Inc()
}

// CountAlignmentSteps adds n optimizer steps to the step counter.
func (m *Metrics) CountAlignmentSteps(n int) {
	if m == nil {
		return
	}
	m.alignmentSteps.Add(float64(n))
}

// ObserveAlignmentDuration records the elapsed time of one alignment run.
// Example: defer metrics.ObserveAlignmentDuration(time.Now())
func (m *Metrics) ObserveAlignmentDuration(start time.Time) {
	if m == nil {
		return
	}
	m.alignmentDuration.Observe(time.Since(start).Seconds())
}

// CreateCounter creates and registers a new CounterVec.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates and registers a new HistogramVec.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates and registers a new GaugeVec.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

// createCounterVec defines a new CounterVec.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec.
func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
