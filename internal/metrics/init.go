package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Database storage ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	// --- DB query operations ---
	dbOps := []string{
		"initialize_schema", "upsert_artwork", "get_artwork", "set_source_ref",
		"set_derivative_refs", "set_pyramid_metadata", "clear_pyramid_metadata",
		"set_pyramid_status", "cas_pyramid_status", "insert_tile_record",
		"get_tile_record", "list_tile_records", "delete_tile_record",
		"count_tile_records",
	}
	for _, op := range dbOps {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Pipeline outcomes ---
	for _, outcome := range []string{"complete", "failed", "aborted"} {
		PyramidRunsTotal.WithLabelValues(outcome)
	}

	// --- Derivative generation ---
	for _, kind := range []string{"thumbnail", "viewer"} {
		VariantGenerationDuration.WithLabelValues(kind)
		VariantGenerationsTotal.WithLabelValues(kind, "success")
		VariantGenerationsTotal.WithLabelValues(kind, "error")
	}

	// --- Blob store operations ---
	for _, op := range []string{"put", "get", "delete", "exists"} {
		BlobOperationsTotal.WithLabelValues(op, "success")
		BlobOperationsTotal.WithLabelValues(op, "error")
		BlobOperationDuration.WithLabelValues(op)
	}
}
