package handlers

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"gallery-server/internal/database"
	"gallery-server/internal/logging"
	"gallery-server/internal/pyramid"
)

const dziNamespace = "http://schemas.microsoft.com/deepzoom/2008"

// Manifests and tiles are content-addressed by pyramid run, so clients may
// cache them indefinitely.
const immutableCacheControl = "public, max-age=31536000, immutable"

type dziSize struct {
	Width  int `xml:"Width,attr"`
	Height int `xml:"Height,attr"`
}

type dziImage struct {
	XMLName  xml.Name `xml:"Image"`
	Xmlns    string   `xml:"xmlns,attr"`
	Format   string   `xml:"Format,attr"`
	Overlap  int      `xml:"Overlap,attr"`
	TileSize int      `xml:"TileSize,attr"`
	Size     dziSize  `xml:"Size"`
}

// GetManifest serves the Deep Zoom manifest for a completed pyramid. An
// artwork that is absent, still processing, or failed is simply not found:
// partial pyramids are never exposed.
func (h *Handlers) GetManifest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	artwork, err := h.db.GetArtwork(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logging.Error("Failed to load artwork %s: %v", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if artwork.PyramidStatus != pyramid.StatusComplete || artwork.Pyramid == nil {
		http.NotFound(w, r)
		return
	}

	manifest := dziImage{
		Xmlns:    dziNamespace,
		Format:   artwork.Pyramid.Format,
		Overlap:  artwork.Pyramid.Overlap,
		TileSize: artwork.Pyramid.TileSize,
		Size: dziSize{
			Width:  artwork.Pyramid.Width,
			Height: artwork.Pyramid.Height,
		},
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", immutableCacheControl)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(manifest); err != nil {
		logging.Error("Failed to encode manifest for artwork %s: %v", id, err)
	}
}

// GetTile resolves one tile address to its blob and redirects there.
// Malformed numeric segments are a bad request; an unknown tile is not
// found.
func (h *Handlers) GetTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	level, err := strconv.Atoi(vars["level"])
	if err != nil || level < 0 {
		http.Error(w, "invalid tile level", http.StatusBadRequest)
		return
	}

	col, row, err := parseTileName(vars["tile"])
	if err != nil {
		http.Error(w, "invalid tile name", http.StatusBadRequest)
		return
	}

	rec, err := h.db.GetTileRecord(r.Context(), id, level, col, row)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logging.Error("Failed to look up tile %s/%d/%d_%d: %v", id, level, col, row, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", immutableCacheControl)
	http.Redirect(w, r, "/blobs/"+rec.BlobRef, http.StatusFound)
}

// parseTileName splits "col_row.jpg" into its coordinates.
func parseTileName(name string) (col, row int, err error) {
	base, ok := strings.CutSuffix(name, "."+pyramid.Format)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected tile extension in %q", name)
	}
	colStr, rowStr, ok := strings.Cut(base, "_")
	if !ok {
		return 0, 0, fmt.Errorf("malformed tile name %q", name)
	}
	col, err = strconv.Atoi(colStr)
	if err != nil || col < 0 {
		return 0, 0, fmt.Errorf("invalid tile column %q", colStr)
	}
	row, err = strconv.Atoi(rowStr)
	if err != nil || row < 0 {
		return 0, 0, fmt.Errorf("invalid tile row %q", rowStr)
	}
	return col, row, nil
}
