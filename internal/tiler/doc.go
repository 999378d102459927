// Package tiler turns a source image into pyramid tiles and fixed-size
// derivatives.
//
// A Renderer wraps one decoded source image and renders individual tiles:
// resample to the tile's level (cached per level for the renderer's
// lifetime), crop the tile rectangle with overlap, and JPEG-encode. Variant
// helpers produce the thumbnail and viewer derivatives with a strict
// no-upscaling rule.
//
// Decoding supports JPEG, PNG, GIF, and WebP. When libvips is available it
// provides a decode-time-shrinking fast path for variant generation; the
// pure-Go path is always available as a fallback.
package tiler
