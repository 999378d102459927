// Package workers sizes goroutine pools for tile rendering and other
// parallel work, respecting container CPU limits and the TILE_WORKERS
// environment override.
package workers
