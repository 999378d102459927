package pyramid

import "math"

// Fixed pyramid parameters. The deep-zoom viewer, the tile generator, and
// the manifest all assume these values; they are not configurable per call.
const (
	// TileSize is the edge length of a pyramid tile in pixels, before overlap.
	TileSize = 512

	// Overlap is the number of border pixels shared between adjacent tiles
	// so the viewer can stitch them without visible seams.
	Overlap = 1

	// Format is the encoded tile format advertised in the manifest.
	Format = "jpg"

	// TileQuality is the JPEG quality used for encoded tiles.
	TileQuality = 80
)

// TileSpec identifies one tile within a pyramid.
type TileSpec struct {
	Level int `json:"level"`
	Col   int `json:"col"`
	Row   int `json:"row"`
}

// Metadata describes a generated pyramid. It is persisted alongside the
// artwork and echoed in the deep-zoom manifest.
type Metadata struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	TileSize int    `json:"tileSize"`
	Overlap  int    `json:"overlap"`
	Format   string `json:"format"`
	MaxLevel int    `json:"maxLevel"`
}

// NewMetadata returns the Metadata for a source image of the given size.
func NewMetadata(width, height int) Metadata {
	return Metadata{
		Width:    width,
		Height:   height,
		TileSize: TileSize,
		Overlap:  Overlap,
		Format:   Format,
		MaxLevel: MaxLevel(width, height),
	}
}

// MaxLevel returns the deepest pyramid level for a source image:
// ceil(log2(max(width, height))). Level maxLevel is full resolution and
// level 0 always fits within a single tile.
//
// Behavior is undefined for non-positive dimensions; callers must reject
// those upstream.
func MaxLevel(width, height int) int {
	longest := width
	if height > longest {
		longest = height
	}
	return int(math.Ceil(math.Log2(float64(longest))))
}

// LevelDims returns the scaled image dimensions at the given level.
// Each level halves the previous one, rounding up.
func LevelDims(width, height, level, maxLevel int) (int, int) {
	if level >= maxLevel {
		return width, height
	}
	scale := math.Pow(2, float64(level-maxLevel))
	levelW := int(math.Ceil(float64(width) * scale))
	levelH := int(math.Ceil(float64(height) * scale))
	return levelW, levelH
}

// Grid returns the number of tile columns and rows needed to cover an
// image of the given level dimensions.
func Grid(levelWidth, levelHeight int) (cols, rows int) {
	cols = (levelWidth + TileSize - 1) / TileSize
	rows = (levelHeight + TileSize - 1) / TileSize
	return cols, rows
}

// TilesForLevel enumerates every tile at one level in row-major order.
func TilesForLevel(width, height, level, maxLevel int) []TileSpec {
	levelW, levelH := LevelDims(width, height, level, maxLevel)
	cols, rows := Grid(levelW, levelH)

	specs := make([]TileSpec, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			specs = append(specs, TileSpec{Level: level, Col: col, Row: row})
		}
	}
	return specs
}

// AllTileSpecs enumerates the full tile work list for a source image,
// level 0 (coarsest) through maxLevel (full resolution) inclusive.
func AllTileSpecs(width, height int) []TileSpec {
	maxLevel := MaxLevel(width, height)

	var specs []TileSpec
	for level := 0; level <= maxLevel; level++ {
		specs = append(specs, TilesForLevel(width, height, level, maxLevel)...)
	}
	return specs
}

// TileCount returns the total number of tiles across all levels.
func TileCount(width, height int) int {
	maxLevel := MaxLevel(width, height)

	total := 0
	for level := 0; level <= maxLevel; level++ {
		levelW, levelH := LevelDims(width, height, level, maxLevel)
		cols, rows := Grid(levelW, levelH)
		total += cols * rows
	}
	return total
}
