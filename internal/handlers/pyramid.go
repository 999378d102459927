package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gallery-server/internal/database"
	"gallery-server/internal/logging"
	"gallery-server/internal/pyramid"
)

// artworkRequest is the body accepted by the artwork and pyramid mutation
// endpoints.
type artworkRequest struct {
	SourceRef string `json:"sourceRef"`
}

// PyramidStatusResponse is the progress view consumed by the admin UI.
type PyramidStatusResponse struct {
	ArtworkID string            `json:"artworkId"`
	Status    pyramid.Status    `json:"status"`
	Display   string            `json:"display"`
	Ready     bool              `json:"ready"`
	TileCount int               `json:"tileCount"`
	Metadata  *pyramid.Metadata `json:"metadata,omitempty"`
}

// displayStatus maps the internal status to what the admin UI shows.
// Processing and failed must be distinguishable from one another.
func displayStatus(status pyramid.Status) string {
	switch status {
	case pyramid.StatusPending, pyramid.StatusGenerating:
		return "processing"
	case pyramid.StatusFailed:
		return "processing failed"
	case pyramid.StatusComplete:
		return "complete"
	default:
		return "none"
	}
}

// UpsertArtwork creates or refreshes the minimal artwork row the pipeline
// hangs its state on. The full artwork document lives in the CRUD layer.
func (h *Handlers) UpsertArtwork(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req artworkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.db.UpsertArtwork(r.Context(), id); err != nil {
		logging.Error("Failed to upsert artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if req.SourceRef != "" {
		if err := h.db.SetSourceRef(r.Context(), id, req.SourceRef); err != nil {
			logging.Error("Failed to set source ref for %s: %v", id, err)
			writeJSONError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	artwork, err := h.db.GetArtwork(r.Context(), id)
	if err != nil {
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, artwork)
}

// GetArtwork returns the pipeline-owned fields of one artwork.
func (h *Handlers) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	artwork, err := h.db.GetArtwork(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "artwork not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to load artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, artwork)
}

// StartPyramid accepts an ingest request: derivatives plus pyramid for the
// given source. The work happens on the background queue; the response is
// only an acknowledgement.
func (h *Handlers) StartPyramid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req artworkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	sourceRef := req.SourceRef
	if sourceRef == "" {
		artwork, err := h.db.GetArtwork(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeJSONError(w, "artwork not found", http.StatusNotFound)
				return
			}
			writeJSONError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		sourceRef = artwork.SourceRef
	}
	if sourceRef == "" {
		writeJSONError(w, "sourceRef is required", http.StatusBadRequest)
		return
	}

	if err := h.db.UpsertArtwork(r.Context(), id); err != nil {
		logging.Error("Failed to upsert artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.pipe.EnqueueIngest(id, sourceRef); err != nil {
		logging.Error("Failed to enqueue ingest for artwork %s: %v", id, err)
		writeJSONError(w, "processing queue is full", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{
		"artworkId": id,
		"status":    "accepted",
	})
}

// GetPyramidStatus returns processing progress for the admin UI.
func (h *Handlers) GetPyramidStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	artwork, err := h.pipe.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "artwork not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to load status for artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tiles, err := h.db.CountTileRecords(r.Context(), id)
	if err != nil {
		logging.Error("Failed to count tiles for artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, PyramidStatusResponse{
		ArtworkID: id,
		Status:    artwork.PyramidStatus,
		Display:   displayStatus(artwork.PyramidStatus),
		Ready:     artwork.Ready(),
		TileCount: tiles,
		Metadata:  artwork.Pyramid,
	})
}

// DeletePyramid runs cleanup for one artwork. Idempotent.
func (h *Handlers) DeletePyramid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.pipe.Cleanup(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "artwork not found", http.StatusNotFound)
			return
		}
		logging.Error("Cleanup failed for artwork %s: %v", id, err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
