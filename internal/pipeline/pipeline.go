// Package pipeline drives artwork image processing: derivative generation,
// batched pyramid tile generation, and cleanup.
//
// Two execution contexts are kept apart on purpose. Everything in this
// package runs in worker context and may fetch blobs and decode images;
// every persisted effect crosses into the database package, whose operations
// are short keyed writes. Pyramid work for one artwork is strictly
// sequential because each batch carries the full remaining-work list and
// only submits the next batch after it finishes; different artworks
// interleave freely on the queue workers.
package pipeline

import (
	"gallery-server/internal/blobstore"
	"gallery-server/internal/database"
	"gallery-server/internal/queue"
	"gallery-server/internal/workers"
)

// DefaultBatchSize is the number of tiles processed per queue invocation.
// It is the tunable that bounds how long a single job occupies a worker.
const DefaultBatchSize = 20

// Config holds pipeline tunables.
type Config struct {
	// BatchSize is the number of tile specs per scheduled batch.
	BatchSize int
	// TileWorkers is the per-batch tile rendering parallelism.
	TileWorkers int
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:   DefaultBatchSize,
		TileWorkers: workers.ForCPU(8),
	}
}

// Pipeline owns the image processing flows for artworks.
type Pipeline struct {
	db     *database.Database
	blobs  *blobstore.Store
	runner *queue.Runner
	cfg    Config
}

// New creates a Pipeline. Zero-valued config fields fall back to defaults.
func New(db *database.Database, blobs *blobstore.Store, runner *queue.Runner, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.TileWorkers <= 0 {
		cfg.TileWorkers = def.TileWorkers
	}
	return &Pipeline{db: db, blobs: blobs, runner: runner, cfg: cfg}
}
