package database

import (
	"time"

	"gallery-server/internal/pyramid"
)

// Artwork holds the four image-pipeline fields of an artwork row. The rest
// of the artwork document (titles, collection ordering, visibility) is
// owned by the CRUD layer outside this core.
type Artwork struct {
	ID            string            `json:"id"`
	SourceRef     string            `json:"sourceRef"`
	ThumbnailRef  string            `json:"thumbnailRef,omitempty"`
	ViewerRef     string            `json:"viewerRef,omitempty"`
	PyramidStatus pyramid.Status    `json:"pyramidStatus"`
	Pyramid       *pyramid.Metadata `json:"pyramidMetadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Ready reports whether the artwork can be shown publicly: a complete
// pyramid and a thumbnail, independently of one another.
func (a *Artwork) Ready() bool {
	return a.PyramidStatus == pyramid.StatusComplete && a.ThumbnailRef != ""
}

// TileRecord is one persisted pyramid tile. Records exist only between the
// start of generation and cleanup; the unique key is
// (artworkID, level, col, row).
type TileRecord struct {
	ArtworkID string `json:"artworkId"`
	Level     int    `json:"level"`
	Col       int    `json:"col"`
	Row       int    `json:"row"`
	BlobRef   string `json:"blobRef"`
}
