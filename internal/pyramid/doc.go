// Package pyramid contains the pure geometry for deep-zoom tile pyramids.
//
// A pyramid is the classic power-of-two scheme: level maxLevel is the source
// image at full resolution, each lower level halves both dimensions (rounding
// up), and level 0 always fits in a single tile. Tiles are TileSize pixels
// square with Overlap border pixels shared between neighbors.
//
// Everything in this package is deterministic and free of I/O so that tile
// grids, work lists, and manifests can be computed (and tested) with exact
// integer expectations. Non-positive image dimensions are rejected by
// callers, not here.
package pyramid
