package tiler

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"gallery-server/internal/pyramid"

	// Source image decoders.
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// Renderer produces pyramid tiles from one decoded source image.
//
// Resampled per-level copies are cached for the renderer's lifetime, so a
// batch of tiles at the same level shares a single expensive resample. The
// cache does not change pixel output: the resample input and parameters are
// identical whether or not the result is reused.
type Renderer struct {
	src      image.Image
	width    int
	height   int
	maxLevel int

	mu     sync.Mutex
	levels map[int]image.Image
}

// NewRenderer decodes the source image once and prepares tile rendering.
// A decode failure here is fatal to the whole batch, not per-tile.
func NewRenderer(src []byte) (*Renderer, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("source image (%s) has no pixels", format)
	}

	return &Renderer{
		src:      img,
		width:    width,
		height:   height,
		maxLevel: pyramid.MaxLevel(width, height),
		levels:   make(map[int]image.Image),
	}, nil
}

// Width returns the source image width in pixels.
func (r *Renderer) Width() int { return r.width }

// Height returns the source image height in pixels.
func (r *Renderer) Height() int { return r.height }

// MaxLevel returns the deepest pyramid level for the source image.
func (r *Renderer) MaxLevel() int { return r.maxLevel }

// RenderTile resamples the source to the spec's level, crops the tile
// rectangle including overlap, and returns the encoded JPEG bytes.
// Errors are per-tile: the caller decides whether to continue with
// sibling tiles.
func (r *Renderer) RenderTile(spec pyramid.TileSpec) ([]byte, error) {
	if spec.Level < 0 || spec.Level > r.maxLevel {
		return nil, fmt.Errorf("tile level %d outside pyramid range [0, %d]", spec.Level, r.maxLevel)
	}
	if spec.Col < 0 || spec.Row < 0 {
		return nil, fmt.Errorf("negative tile coordinate %d_%d", spec.Col, spec.Row)
	}

	levelImg, levelW, levelH := r.levelImage(spec.Level)

	rect, err := tileRect(spec, levelW, levelH)
	if err != nil {
		return nil, err
	}

	tile := imaging.Crop(levelImg, rect)
	return EncodeJPEG(tile, pyramid.TileQuality)
}

// levelImage returns the source resampled to the given level's dimensions,
// caching the result for subsequent tiles at the same level.
func (r *Renderer) levelImage(level int) (image.Image, int, int) {
	levelW, levelH := pyramid.LevelDims(r.width, r.height, level, r.maxLevel)
	if level == r.maxLevel {
		return r.src, levelW, levelH
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if img, ok := r.levels[level]; ok {
		return img, levelW, levelH
	}

	img := imaging.Resize(r.src, levelW, levelH, imaging.Lanczos)
	r.levels[level] = img
	return img, levelW, levelH
}

// tileRect computes the tile's pixel rectangle at a level, extending by
// Overlap pixels on every edge shared with a neighboring tile and clamping
// to the level bounds.
func tileRect(spec pyramid.TileSpec, levelW, levelH int) (image.Rectangle, error) {
	x := spec.Col * pyramid.TileSize
	y := spec.Row * pyramid.TileSize
	if spec.Col > 0 {
		x -= pyramid.Overlap
	}
	if spec.Row > 0 {
		y -= pyramid.Overlap
	}

	if x >= levelW || y >= levelH {
		return image.Rectangle{}, fmt.Errorf("tile %d/%d_%d outside level bounds %dx%d",
			spec.Level, spec.Col, spec.Row, levelW, levelH)
	}

	w := pyramid.TileSize + pyramid.Overlap
	if spec.Col > 0 {
		w += pyramid.Overlap
	}
	if x+w > levelW {
		w = levelW - x
	}

	h := pyramid.TileSize + pyramid.Overlap
	if spec.Row > 0 {
		h += pyramid.Overlap
	}
	if y+h > levelH {
		h = levelH - y
	}

	return image.Rect(x, y, x+w, y+h), nil
}

// EncodeJPEG encodes an image as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions reads the pixel dimensions of encoded image bytes without a
// full decode.
func Dimensions(src []byte) (int, int, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image dimensions: %w", err)
	}
	if config.Width < 1 || config.Height < 1 {
		return 0, 0, fmt.Errorf("image has invalid dimensions %dx%d", config.Width, config.Height)
	}
	return config.Width, config.Height, nil
}
