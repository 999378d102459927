package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gallery-server/internal/blobstore"
	"gallery-server/internal/database"
	"gallery-server/internal/logging"
	"gallery-server/internal/metrics"
	"gallery-server/internal/pyramid"
	"gallery-server/internal/tiler"
)

// BatchContinuation carries the full state of an in-flight pyramid run
// between scheduled batches. It is never persisted: each batch hands the
// remainder to the next one through the queue, which is the only
// synchronization between batches of the same artwork.
type BatchContinuation struct {
	ArtworkID string
	SourceRef string
	Width     int
	Height    int
	MaxLevel  int
	Batch     []pyramid.TileSpec
	Remaining []pyramid.TileSpec
}

// StartPyramid computes the tile plan for an artwork's source image, records
// pyramid metadata, marks the artwork pending, and schedules the first
// batch. The first batch flips pending to generating when it actually runs.
//
// A source that cannot be fetched or measured aborts before any status
// change.
func (p *Pipeline) StartPyramid(ctx context.Context, artworkID, sourceRef string) error {
	src, err := p.blobs.Get(ctx, sourceRef)
	if err != nil {
		return fmt.Errorf("failed to fetch source %s: %w", sourceRef, err)
	}
	width, height, err := tiler.Dimensions(src)
	if err != nil {
		return fmt.Errorf("failed to read dimensions of %s: %w", sourceRef, err)
	}

	md := pyramid.NewMetadata(width, height)
	specs := pyramid.AllTileSpecs(width, height)

	if err := p.db.SetPyramidMetadata(ctx, artworkID, md); err != nil {
		return err
	}
	if err := p.db.SetPyramidStatus(ctx, artworkID, pyramid.StatusPending); err != nil {
		return err
	}
	metrics.PyramidsActive.Inc()

	logging.Info("Starting pyramid for artwork %s: %dx%d, %d levels, %d tiles",
		artworkID, width, height, md.MaxLevel+1, len(specs))

	cont := &BatchContinuation{
		ArtworkID: artworkID,
		SourceRef: sourceRef,
		Width:     width,
		Height:    height,
		MaxLevel:  md.MaxLevel,
		Remaining: specs,
	}
	if err := p.submitNext(cont); err != nil {
		p.finishRun(ctx, artworkID, pyramid.StatusFailed, "failed")
		return fmt.Errorf("failed to schedule pyramid for %s: %w", artworkID, err)
	}
	return nil
}

// submitNext slices the next batch off cont.Remaining and enqueues it.
func (p *Pipeline) submitNext(cont *BatchContinuation) error {
	n := p.cfg.BatchSize
	if n > len(cont.Remaining) {
		n = len(cont.Remaining)
	}
	next := &BatchContinuation{
		ArtworkID: cont.ArtworkID,
		SourceRef: cont.SourceRef,
		Width:     cont.Width,
		Height:    cont.Height,
		MaxLevel:  cont.MaxLevel,
		Batch:     cont.Remaining[:n],
		Remaining: cont.Remaining[n:],
	}
	return p.runner.Submit(func(ctx context.Context) {
		p.runBatch(ctx, next)
	})
}

// runBatch processes one batch of tile specs, then either schedules the
// continuation or finishes the run. Per-tile failures are logged and
// skipped; only losing the source mid-run fails the whole pyramid.
func (p *Pipeline) runBatch(ctx context.Context, cont *BatchContinuation) {
	start := time.Now()
	metrics.TileBatchesTotal.Inc()
	defer func() {
		metrics.TileBatchDuration.Observe(time.Since(start).Seconds())
	}()

	// The first batch flips pending to generating. Later batches find the
	// status already at generating; anything else means cleanup won the
	// race and this run must stop without touching status.
	flipped, err := p.db.CasPyramidStatus(ctx, cont.ArtworkID, pyramid.StatusPending, pyramid.StatusGenerating)
	if err != nil {
		logging.Error("Batch for artwork %s: status check failed: %v", cont.ArtworkID, err)
		metrics.PyramidRunsTotal.WithLabelValues("aborted").Inc()
		return
	}
	if !flipped {
		status, err := p.db.GetPyramidStatus(ctx, cont.ArtworkID)
		if err != nil || status != pyramid.StatusGenerating {
			logging.Info("Abandoning pyramid batch for artwork %s: status is %q", cont.ArtworkID, status)
			metrics.PyramidRunsTotal.WithLabelValues("aborted").Inc()
			return
		}
	}

	src, err := p.blobs.Get(ctx, cont.SourceRef)
	if err != nil {
		logging.Error("Pyramid for artwork %s failed: source %s gone mid-run: %v",
			cont.ArtworkID, cont.SourceRef, err)
		p.finishRun(ctx, cont.ArtworkID, pyramid.StatusFailed, "failed")
		return
	}
	renderer, err := tiler.NewRenderer(src)
	if err != nil {
		logging.Error("Pyramid for artwork %s failed: source undecodable: %v", cont.ArtworkID, err)
		p.finishRun(ctx, cont.ArtworkID, pyramid.StatusFailed, "failed")
		return
	}

	successes, failures, stale := p.renderBatch(ctx, cont, renderer)
	if stale {
		// Cleanup removed the pyramid while this batch was running. Status
		// belongs to cleanup now; just stop.
		logging.Info("Abandoning pyramid batch for artwork %s: cleaned up mid-batch", cont.ArtworkID)
		metrics.PyramidRunsTotal.WithLabelValues("aborted").Inc()
		return
	}
	if failures > 0 {
		logging.Warn("Batch for artwork %s: %d of %d tiles failed and were skipped",
			cont.ArtworkID, failures, len(cont.Batch))
	}

	if len(cont.Remaining) > 0 {
		if err := p.submitNext(cont); err != nil {
			logging.Error("Failed to schedule continuation for artwork %s: %v", cont.ArtworkID, err)
			p.finishRun(ctx, cont.ArtworkID, pyramid.StatusFailed, "failed")
		}
		return
	}

	p.finishRun(ctx, cont.ArtworkID, pyramid.StatusComplete, "complete")
	logging.Info("Pyramid complete for artwork %s (%d tiles in final batch, %d skipped)",
		cont.ArtworkID, successes, failures)
}

// renderBatch renders and persists every spec in cont.Batch on a small
// worker pool, aggregating outcomes before the continuation decision.
// stale is true when an insert was rejected because the pyramid is no
// longer generating.
func (p *Pipeline) renderBatch(ctx context.Context, cont *BatchContinuation, renderer *tiler.Renderer) (successes, failures int, stale bool) {
	n := p.cfg.TileWorkers
	if n > len(cont.Batch) {
		n = len(cont.Batch)
	}
	if n < 1 {
		n = 1
	}

	type outcome struct {
		ok    bool
		stale bool
	}

	specs := make(chan pyramid.TileSpec)
	outcomes := make(chan outcome, len(cont.Batch))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range specs {
				ok, st := p.processTile(ctx, cont.ArtworkID, renderer, spec)
				outcomes <- outcome{ok: ok, stale: st}
			}
		}()
	}
	for _, spec := range cont.Batch {
		specs <- spec
	}
	close(specs)
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		switch {
		case o.stale:
			stale = true
		case o.ok:
			successes++
		default:
			failures++
		}
	}
	return successes, failures, stale
}

// processTile renders one tile, stores its blob, and records it. A render or
// store failure is recoverable: the tile is simply absent from the pyramid.
// An insert rejected by the status guard reports stale instead.
func (p *Pipeline) processTile(ctx context.Context, artworkID string, renderer *tiler.Renderer, spec pyramid.TileSpec) (ok, stale bool) {
	renderStart := time.Now()
	data, err := renderer.RenderTile(spec)
	metrics.TileRenderDuration.Observe(time.Since(renderStart).Seconds())
	if err != nil {
		metrics.TileFailuresTotal.Inc()
		logging.Warn("Skipping tile %d/%d_%d for artwork %s: %v",
			spec.Level, spec.Col, spec.Row, artworkID, err)
		return false, false
	}

	ref := blobstore.TileRef(artworkID, spec.Level, spec.Col, spec.Row)
	if err := p.blobs.Put(ctx, ref, data); err != nil {
		metrics.TileFailuresTotal.Inc()
		logging.Warn("Skipping tile %d/%d_%d for artwork %s: blob write failed: %v",
			spec.Level, spec.Col, spec.Row, artworkID, err)
		return false, false
	}

	inserted, err := p.db.InsertTileRecord(ctx, database.TileRecord{
		ArtworkID: artworkID,
		Level:     spec.Level,
		Col:       spec.Col,
		Row:       spec.Row,
		BlobRef:   ref,
	})
	if err != nil {
		metrics.TileFailuresTotal.Inc()
		logging.Warn("Skipping tile %d/%d_%d for artwork %s: record insert failed: %v",
			spec.Level, spec.Col, spec.Row, artworkID, err)
		if derr := p.blobs.Delete(ctx, ref); derr != nil {
			logging.Warn("Failed to remove orphaned tile blob %s: %v", ref, derr)
		}
		return false, false
	}
	if !inserted {
		// Status guard rejected the record: cleanup ran. Remove the blob so
		// nothing outlives the cleaned-up pyramid.
		if derr := p.blobs.Delete(ctx, ref); derr != nil {
			logging.Warn("Failed to remove stale tile blob %s: %v", ref, derr)
		}
		return false, true
	}

	metrics.TilesGeneratedTotal.Inc()
	return true, false
}

// finishRun records the terminal status of a pyramid run. The write is a
// compare-and-set from a processing state so a concurrent cleanup, which
// already reset the artwork to none, is never overwritten. The gauge is
// decremented only by whichever side performed the transition out of
// pending/generating.
func (p *Pipeline) finishRun(ctx context.Context, artworkID string, status pyramid.Status, outcome string) {
	applied, err := p.db.CasPyramidStatus(ctx, artworkID, pyramid.StatusGenerating, status)
	if err == nil && !applied && status == pyramid.StatusFailed {
		applied, err = p.db.CasPyramidStatus(ctx, artworkID, pyramid.StatusPending, status)
	}
	if err != nil {
		logging.Error("Failed to set pyramid status %q for artwork %s: %v", status, artworkID, err)
		return
	}
	if !applied {
		logging.Info("Pyramid run for artwork %s ended after its status moved on", artworkID)
		metrics.PyramidRunsTotal.WithLabelValues("aborted").Inc()
		return
	}
	metrics.PyramidsActive.Dec()
	metrics.PyramidRunsTotal.WithLabelValues(outcome).Inc()
}
