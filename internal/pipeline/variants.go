package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"gallery-server/internal/blobstore"
	"gallery-server/internal/logging"
	"gallery-server/internal/metrics"
	"gallery-server/internal/tiler"
)

// GenerateVariants produces the thumbnail and viewer derivatives for an
// artwork from its source image, then starts pyramid generation.
//
// The source is fetched and decoded before anything is mutated, so a
// missing or undecodable source leaves the artwork exactly as it was: no
// derivative references are recorded and the scheduler is never invoked.
// When the artwork already has a pyramid from a previous source, it is
// cleaned up before the new references land, so tile records never outlive
// the source they were cut from.
func (p *Pipeline) GenerateVariants(ctx context.Context, artworkID, sourceRef string) error {
	artwork, err := p.db.GetArtwork(ctx, artworkID)
	if err != nil {
		return fmt.Errorf("failed to load artwork %s: %w", artworkID, err)
	}

	src, err := p.blobs.Get(ctx, sourceRef)
	if err != nil {
		return fmt.Errorf("failed to fetch source %s: %w", sourceRef, err)
	}
	width, height, err := tiler.Dimensions(src)
	if err != nil {
		return fmt.Errorf("failed to read source dimensions for %s: %w", artworkID, err)
	}
	img, err := decodeSource(src, width, height)
	if err != nil {
		return fmt.Errorf("failed to decode source for %s: %w", artworkID, err)
	}

	thumb, err := makeVariant(img, "thumbnail", tiler.ThumbnailMaxDim, tiler.ThumbnailQuality)
	if err != nil {
		return err
	}
	viewer, err := makeVariant(img, "viewer", tiler.ViewerMaxDim, tiler.ViewerQuality)
	if err != nil {
		return err
	}

	thumbRef := blobstore.NewRef("derivatives", ".jpg")
	viewerRef := blobstore.NewRef("derivatives", ".jpg")
	if err := p.blobs.Put(ctx, thumbRef, thumb); err != nil {
		return err
	}
	if err := p.blobs.Put(ctx, viewerRef, viewer); err != nil {
		return err
	}

	// Replacing the source of an artwork that already has tiles: remove the
	// old pyramid before the new references and status land.
	if err := p.Cleanup(ctx, artworkID); err != nil {
		return fmt.Errorf("failed to clean up previous pyramid for %s: %w", artworkID, err)
	}

	if err := p.db.SetSourceRef(ctx, artworkID, sourceRef); err != nil {
		return err
	}
	if err := p.db.SetDerivativeRefs(ctx, artworkID, thumbRef, viewerRef); err != nil {
		return err
	}

	// Old derivatives are unreachable now; removing them is best effort.
	for _, old := range []string{artwork.ThumbnailRef, artwork.ViewerRef} {
		if old == "" || old == thumbRef || old == viewerRef {
			continue
		}
		if err := p.blobs.Delete(ctx, old); err != nil {
			logging.Warn("Failed to delete stale derivative %s: %v", old, err)
		}
	}

	logging.Info("Generated derivatives for artwork %s (source %dx%d)", artworkID, width, height)
	return p.StartPyramid(ctx, artworkID, sourceRef)
}

// decodeSource decodes the source bytes, using the libvips shrink-on-load
// path for very large images when available.
func decodeSource(src []byte, width, height int) (image.Image, error) {
	if tiler.IsVipsAvailable() && (width > 2*tiler.ViewerMaxDim || height > 2*tiler.ViewerMaxDim) {
		img, err := tiler.DecodeShrunk(src, 2*tiler.ViewerMaxDim)
		if err == nil {
			return img, nil
		}
		logging.Warn("vips decode failed, falling back to pure-Go decode: %v", err)
	}
	return tiler.Decode(src)
}

func makeVariant(img image.Image, kind string, maxDim, quality int) ([]byte, error) {
	start := time.Now()
	data, err := tiler.Variant(img, maxDim, quality)
	metrics.VariantGenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VariantGenerationsTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("failed to generate %s variant: %w", kind, err)
	}
	metrics.VariantGenerationsTotal.WithLabelValues(kind, "success").Inc()
	return data, nil
}
