package tiler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"gallery-server/internal/pyramid"
)

// makeTestImage encodes a solid-color PNG of the given size.
func makeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// decodeDims decodes tile bytes and returns the pixel dimensions.
func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode tile: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNewRenderer(t *testing.T) {
	t.Run("valid image", func(t *testing.T) {
		r, err := NewRenderer(makeTestImage(t, 600, 400))
		if err != nil {
			t.Fatalf("NewRenderer failed: %v", err)
		}
		if r.Width() != 600 || r.Height() != 400 {
			t.Errorf("dimensions %dx%d, want 600x400", r.Width(), r.Height())
		}
		if r.MaxLevel() != 10 {
			t.Errorf("maxLevel %d, want 10", r.MaxLevel())
		}
	})

	t.Run("garbage bytes", func(t *testing.T) {
		if _, err := NewRenderer([]byte("not an image")); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("empty bytes", func(t *testing.T) {
		if _, err := NewRenderer(nil); err == nil {
			t.Error("expected decode error for empty input")
		}
	})
}

func TestRenderTileSizes(t *testing.T) {
	// 1100x800 at full resolution is a 3x2 grid: interior tiles get overlap
	// on both edges, border tiles only on shared edges.
	r, err := NewRenderer(makeTestImage(t, 1100, 800))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	maxLevel := r.MaxLevel()

	tests := []struct {
		name  string
		spec  pyramid.TileSpec
		wantW int
		wantH int
	}{
		// Top-left corner: trailing overlap only.
		{"corner", pyramid.TileSpec{Level: maxLevel, Col: 0, Row: 0}, 513, 513},
		// Interior column, top row: overlap left+right, trailing below.
		{"top middle", pyramid.TileSpec{Level: maxLevel, Col: 1, Row: 0}, 514, 513},
		// Last column: 1100 - (1024-1) = 77 pixels remain.
		{"top right", pyramid.TileSpec{Level: maxLevel, Col: 2, Row: 0}, 77, 513},
		// Bottom row: 800 - (512-1) = 289 pixels remain.
		{"bottom left", pyramid.TileSpec{Level: maxLevel, Col: 0, Row: 1}, 513, 289},
		{"bottom middle", pyramid.TileSpec{Level: maxLevel, Col: 1, Row: 1}, 514, 289},
		{"bottom right", pyramid.TileSpec{Level: maxLevel, Col: 2, Row: 1}, 77, 289},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.RenderTile(tt.spec)
			if err != nil {
				t.Fatalf("RenderTile(%v) failed: %v", tt.spec, err)
			}
			w, h := decodeDims(t, data)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("tile %v is %dx%d, want %dx%d", tt.spec, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderTileLevelZero(t *testing.T) {
	r, err := NewRenderer(makeTestImage(t, 600, 400))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	data, err := r.RenderTile(pyramid.TileSpec{Level: 0, Col: 0, Row: 0})
	if err != nil {
		t.Fatalf("RenderTile level 0 failed: %v", err)
	}

	// Level 0 of a 600x400 pyramid is a 1x1 pixel thumbnail.
	w, h := decodeDims(t, data)
	if w != 1 || h != 1 {
		t.Errorf("level 0 tile is %dx%d, want 1x1", w, h)
	}
}

func TestRenderTileErrors(t *testing.T) {
	r, err := NewRenderer(makeTestImage(t, 600, 400))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	tests := []struct {
		name string
		spec pyramid.TileSpec
	}{
		{"level too deep", pyramid.TileSpec{Level: r.MaxLevel() + 1, Col: 0, Row: 0}},
		{"negative level", pyramid.TileSpec{Level: -1, Col: 0, Row: 0}},
		{"negative col", pyramid.TileSpec{Level: r.MaxLevel(), Col: -1, Row: 0}},
		{"col past grid", pyramid.TileSpec{Level: r.MaxLevel(), Col: 5, Row: 0}},
		{"row past grid", pyramid.TileSpec{Level: r.MaxLevel(), Col: 0, Row: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.RenderTile(tt.spec); err == nil {
				t.Errorf("expected error for spec %v", tt.spec)
			}
		})
	}
}

func TestRenderAllTilesForImage(t *testing.T) {
	// Every spec the geometry enumerates must render successfully.
	r, err := NewRenderer(makeTestImage(t, 700, 300))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	specs := pyramid.AllTileSpecs(r.Width(), r.Height())
	for _, spec := range specs {
		if _, err := r.RenderTile(spec); err != nil {
			t.Errorf("RenderTile(%v) failed: %v", spec, err)
		}
	}
}

func TestDimensions(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		w, h, err := Dimensions(makeTestImage(t, 123, 45))
		if err != nil {
			t.Fatalf("Dimensions failed: %v", err)
		}
		if w != 123 || h != 45 {
			t.Errorf("got %dx%d, want 123x45", w, h)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, _, err := Dimensions([]byte("junk")); err == nil {
			t.Error("expected error for undecodable bytes")
		}
	})
}
