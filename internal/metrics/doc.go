// Package metrics defines the Prometheus instrumentation for the gallery
// server: HTTP request metrics, database query metrics, tile pipeline
// counters and histograms, and blob store operation metrics.
//
// Metrics are registered with promauto at package load. InitializeMetrics
// pre-populates known label combinations so every series is present from
// the first scrape, and Collector polls the gauges that cannot be pushed.
package metrics
