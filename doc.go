// Package main provides the entry point for the gallery server.
//
// The gallery server is the image processing core of an online gallery: it
// turns uploaded artwork images into browse thumbnails, viewer images, and
// Deep Zoom tile pyramids, and serves the resulting manifests and tiles.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Configuration Loading: Reads environment variables and validates directories
//  2. Database Initialization: Opens SQLite database in WAL mode
//  3. Blob Store: Opens a local directory or cloud bucket for image bytes
//  4. Component Initialization:
//     - libvips: Decode-time shrinking for very large source images
//     - Tile Pipeline: Background queue draining batched tile work
//     - Metrics Collector: Gathers Prometheus metrics
//  5. HTTP Server Setup: Configures routes, middleware, and starts server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Deep Zoom manifest and tile endpoints
//     - Blob streaming for tiles and derivatives
//     - Pyramid lifecycle API consumed by the gallery CRUD layer
//     - Health check and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Tile Pipeline
//
// Pyramid generation runs as a chain of bounded batches: each queue job
// processes a fixed number of tiles and then submits a continuation carrying
// the remaining work, so no single job monopolizes a worker. Batches for one
// artwork are strictly sequential; independent artworks interleave freely.
//
// # Environment Variables
//
// Configuration is primarily through environment variables:
//
//   - BLOB_LOCATION: Blob directory or bucket URL (default: /blobs)
//   - DATABASE_DIR: Directory for SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - TILE_BATCH_SIZE: Tiles per scheduled batch (default: 20)
//   - QUEUE_WORKERS: Background queue workers (default: 2)
//   - TILE_WORKERS: Per-batch rendering parallelism override
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - VIPS_ENABLED: Use libvips for large-image decode (default: true)
//
// # Graceful Shutdown
//
// The application handles SIGINT and SIGTERM signals gracefully:
//
//  1. Stop the tile pipeline queue (in-flight batches finish)
//  2. Shutdown metrics server (if running)
//  3. Shutdown main HTTP server (30s timeout)
//  4. Close blob store and database connections
//
// An interrupted pyramid stays in its pending or generating state and can be
// restarted or cleaned up through the API after the next start.
//
// # Build Requirements
//
// The application requires CGO for SQLite and, optionally, libvips:
//
//   - SQLite: artwork and tile record store
//   - libvips: memory-efficient decode of very large sources
//
// # Related Packages
//
//   - [gallery-server/internal/pyramid]: Deep Zoom geometry and status model
//   - [gallery-server/internal/tiler]: Tile rendering and derivative encoding
//   - [gallery-server/internal/pipeline]: Batched generation, variants, cleanup
//   - [gallery-server/internal/database]: SQLite status and tile record store
//   - [gallery-server/internal/blobstore]: Bucket-backed image byte storage
//   - [gallery-server/internal/handlers]: HTTP request handlers
//   - [gallery-server/internal/middleware]: HTTP middleware (logging, metrics)
//   - [gallery-server/internal/startup]: Configuration and initialization
package main
