package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_server_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_server_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_server_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_server_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_server_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_server_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_server_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Tile pipeline metrics
var (
	TilesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_server_tiles_generated_total",
			Help: "Total number of pyramid tiles generated and persisted",
		},
	)

	TileFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_server_tile_failures_total",
			Help: "Total number of per-tile failures that were skipped",
		},
	)

	TileRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_server_tile_render_duration_seconds",
			Help:    "Time to render and encode one tile",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	TileBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_server_tile_batches_total",
			Help: "Total number of tile batches processed",
		},
	)

	TileBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_server_tile_batch_duration_seconds",
			Help:    "Duration of one tile batch including persistence",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PyramidRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_server_pyramid_runs_total",
			Help: "Total number of pyramid generation runs by outcome",
		},
		[]string{"outcome"}, // "complete", "failed", "aborted"
	)

	PyramidsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_server_pyramids_active",
			Help: "Number of pyramids currently pending or generating",
		},
	)

	VariantGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_server_variant_generations_total",
			Help: "Total number of derivative generations by kind and status",
		},
		[]string{"kind", "status"}, // kind: "thumbnail", "viewer"
	)

	VariantGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_server_variant_generation_duration_seconds",
			Help:    "Time to produce one derivative from a decoded source",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	CleanupRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_server_cleanup_runs_total",
			Help: "Total number of pyramid cleanup runs",
		},
	)

	CleanupTilesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_server_cleanup_tiles_deleted_total",
			Help: "Total number of tile blobs and records removed by cleanup",
		},
	)
)

// Blob store metrics
var (
	BlobOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_server_blob_operations_total",
			Help: "Total number of blob store operations",
		},
		[]string{"operation", "status"},
	)

	BlobOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_server_blob_operation_duration_seconds",
			Help:    "Blob store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)
)
