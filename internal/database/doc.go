// Package database is the status and metadata store for the tile pipeline.
//
// It owns the four pipeline fields of an artwork (source reference,
// derivative references, pyramid status, pyramid metadata) and the per-tile
// records, stored in SQLite with WAL journaling. Every operation is a
// short keyed read or write with a bounded timeout; image decoding and
// network work stay in the worker context and call back in through this
// narrow interface.
//
// Tile record inserts are guarded by the artwork's status in the same
// statement, which closes the race between cleanup and an in-flight batch.
package database
