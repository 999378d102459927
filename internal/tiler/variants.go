package tiler

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Fixed derivative targets. Every artwork gets exactly these two raster
// derivatives alongside its pyramid.
const (
	// ThumbnailMaxDim is the longest edge of the grid/list thumbnail.
	ThumbnailMaxDim = 600
	// ThumbnailQuality is the JPEG quality for thumbnails.
	ThumbnailQuality = 85

	// ViewerMaxDim is the longest edge of the standard viewer image.
	ViewerMaxDim = 2000
	// ViewerQuality is the JPEG quality for viewer images.
	ViewerQuality = 90
)

// Decode decodes encoded source image bytes into an image.
func Decode(src []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// FitWithin scales img down so its longest edge is at most maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged: derivatives are never upscaled.
func FitWithin(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxDim && height <= maxDim {
		return img
	}
	if width >= height {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}

// Variant produces one encoded derivative: scale to fit maxDim (or re-encode
// only, when already small enough) and encode at the given JPEG quality.
func Variant(img image.Image, maxDim, quality int) ([]byte, error) {
	return EncodeJPEG(FitWithin(img, maxDim), quality)
}
