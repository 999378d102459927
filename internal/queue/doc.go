// Package queue provides the in-process job runner behind the tile batch
// scheduler. Each tile batch is submitted as one bounded job; a batch that
// has more work left re-submits a continuation carrying the remaining tile
// list, so no single job exceeds its time budget and no state lives in the
// runner itself.
package queue
