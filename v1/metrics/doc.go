// Package metrics exposes Prometheus metrics for the aesthetic-gradient
// pipeline.
//
// Each Metrics instance owns an isolated Prometheus registry, wrapped with a
// constant "service" label, and an HTTP server that serves /metrics for
// scraping. Built-in instruments cover the two long-running operations of the
// library:
//
//   - aesthetic_images_embedded_total: images pushed through the vision encoder
//   - aesthetic_embeddings_generated_total{status}: embedding-generation runs
//   - aesthetic_alignment_runs_total{status}: text-alignment invocations
//   - aesthetic_alignment_steps_total: optimizer steps executed
//   - aesthetic_alignment_duration_seconds: per-request alignment latency
//
// Additional instruments can be registered through the CreateCounter,
// CreateHistogram, and CreateGauge factories.
//
// # Configuration
//
// Environment variables:
//
//	METRICS_ADDRESS                    listen address (default ":9090")
//	METRICS_SERVICE_NAME               constant service label (default "aesthetic")
//	METRICS_ENABLE_DEFAULT_COLLECTORS  register Go/process/build collectors (default true)
//
// # Dependency Injection (Fx)
//
// metrics.FXModule provides *Metrics and manages the HTTP server's lifecycle:
// started on OnStart in a background goroutine, gracefully shut down on
// OnStop.
package metrics
