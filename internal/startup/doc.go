// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - BLOB_LOCATION: Local blob directory or bucket URL (default: /blobs)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - TILE_BATCH_SIZE: Tiles processed per scheduled batch (default: 20)
//   - QUEUE_WORKERS: Background queue worker count (default: 2)
//   - QUEUE_SIZE: Background queue buffer size (default: 256)
//   - TILE_WORKERS: Per-batch tile rendering parallelism override
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_TILE_REQUESTS: Log tile and blob requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - VIPS_ENABLED: Use libvips for large-image decode (default: true)
//
// # Directory Setup
//
// The package validates and creates required directories:
//   - Database directory: Required, must be writable
//   - Blob directory: Required and must be writable when BLOB_LOCATION is a
//     local path; bucket URLs are validated when the store opens
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogPipelineInit]: Tile pipeline configuration
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
