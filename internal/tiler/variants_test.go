package tiler

import (
	"bytes"
	"image"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		maxDim int
		wantW  int
		wantH  int
	}{
		{"landscape downscale", 3000, 2000, 600, 600, 400},
		{"portrait downscale", 2000, 3000, 600, 400, 600},
		{"square downscale", 4000, 4000, 2000, 2000, 2000},
		{"already within bounds", 500, 300, 600, 500, 300},
		{"exactly at bound", 600, 400, 600, 600, 400},
		{"never upscaled", 100, 50, 2000, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := FitWithin(src, tt.maxDim)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("FitWithin(%dx%d, %d) = %dx%d, want %dx%d",
					tt.width, tt.height, tt.maxDim, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitWithinReturnsSameImageWhenSmall(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if got := FitWithin(src, 600); got != image.Image(src) {
		t.Error("small image should be returned unchanged, not re-sampled")
	}
}

func TestVariant(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 900))

	data, err := Variant(src, ThumbnailMaxDim, ThumbnailQuality)
	if err != nil {
		t.Fatalf("Variant failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode variant: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("variant format %q, want jpeg", format)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 450 {
		t.Errorf("variant is %dx%d, want 600x450", b.Dx(), b.Dy())
	}
}

func TestDecode(t *testing.T) {
	data := makeTestImage(t, 40, 30)
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("decoded %dx%d, want 40x30", b.Dx(), b.Dy())
	}

	if _, err := Decode([]byte{0x00}); err == nil {
		t.Error("expected error for undecodable bytes")
	}
}
