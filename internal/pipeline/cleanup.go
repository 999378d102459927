package pipeline

import (
	"context"
	"fmt"

	"gallery-server/internal/database"
	"gallery-server/internal/logging"
	"gallery-server/internal/metrics"
	"gallery-server/internal/pyramid"
)

// Cleanup removes every tile record and tile blob for an artwork, clears
// its pyramid metadata, and resets the status to none. It is the only
// deletion path for pyramid data and is safe to run at any time, including
// while a batch for the same artwork is still scheduled: the status reset
// makes the tile-insert guard reject anything the batch persists afterward.
//
// Running it again on an already-clean artwork is a no-op beyond the
// metadata/status reset.
func (p *Pipeline) Cleanup(ctx context.Context, artworkID string) error {
	artwork, err := p.db.GetArtwork(ctx, artworkID)
	if err != nil {
		return err
	}

	// Reset status first so in-flight batches stop persisting tiles while
	// we delete.
	if err := p.db.SetPyramidStatus(ctx, artworkID, pyramid.StatusNone); err != nil {
		return err
	}
	if artwork.PyramidStatus.Processing() {
		metrics.PyramidsActive.Dec()
	}

	records, err := p.db.ListTileRecords(ctx, artworkID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := p.blobs.Delete(ctx, rec.BlobRef); err != nil {
			return fmt.Errorf("failed to delete tile blob %s: %w", rec.BlobRef, err)
		}
		if err := p.db.DeleteTileRecord(ctx, artworkID, rec.Level, rec.Col, rec.Row); err != nil {
			return err
		}
		metrics.CleanupTilesDeleted.Inc()
	}

	if err := p.db.ClearPyramidMetadata(ctx, artworkID); err != nil {
		return err
	}

	metrics.CleanupRunsTotal.Inc()
	if len(records) > 0 {
		logging.Info("Cleaned up pyramid for artwork %s: %d tiles removed", artworkID, len(records))
	}
	return nil
}

// Status returns the pipeline-owned fields of one artwork for progress
// display.
func (p *Pipeline) Status(ctx context.Context, artworkID string) (*database.Artwork, error) {
	return p.db.GetArtwork(ctx, artworkID)
}

// EnqueueIngest schedules GenerateVariants on the background queue so HTTP
// handlers can accept the work and return immediately.
func (p *Pipeline) EnqueueIngest(artworkID, sourceRef string) error {
	return p.runner.Submit(func(ctx context.Context) {
		if err := p.GenerateVariants(ctx, artworkID, sourceRef); err != nil {
			logging.Error("Ingest of artwork %s failed: %v", artworkID, err)
		}
	})
}
