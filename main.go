package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gallery-server/internal/blobstore"
	"gallery-server/internal/database"
	"gallery-server/internal/handlers"
	"gallery-server/internal/logging"
	"gallery-server/internal/metrics"
	"gallery-server/internal/middleware"
	"gallery-server/internal/pipeline"
	"gallery-server/internal/queue"
	"gallery-server/internal/startup"
	"gallery-server/internal/tiler"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Open blob store
	blobs, err := blobstore.Open(ctx, config.BlobLocation)
	if err != nil {
		startup.LogFatal("Failed to open blob store: %v", err)
	}
	defer blobs.Close()

	// libvips decode fast path for large sources
	if config.VipsEnabled {
		tiler.InitVips()
		defer tiler.ShutdownVips()
	}

	// Start the tile pipeline
	startup.LogPipelineInit(config.TileBatchSize, config.QueueWorkers)
	runner := queue.NewRunner(queue.Config{
		Workers: config.QueueWorkers,
		Size:    config.QueueSize,
	})
	runner.Start()
	startup.LogPipelineStarted()

	pipe := pipeline.New(db, blobs, runner, pipeline.Config{
		BatchSize: config.TileBatchSize,
	})

	// Setup router
	h := handlers.New(db, blobs, pipe)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router, config.LogTileRequests, config.LogHealthChecks)

	// Apply middleware: compression innermost, then logging, then metrics.
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogTileRequests = config.LogTileRequests
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.Compression()(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics server on its own port so internal scrape traffic stays off
	// the public listener.
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metricsCollector := metrics.NewCollector(config.DatabasePath, db, 30*time.Second)
		metricsCollector.Start()
		defer metricsCollector.Stop()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, runner)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, runner *queue.Runner) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping tile pipeline")
	runner.Stop()
	startup.LogShutdownStepComplete("Tile pipeline stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
