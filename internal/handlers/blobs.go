package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"gallery-server/internal/blobstore"
	"gallery-server/internal/logging"
)

// GetBlob streams stored content: tiles, thumbnails, and viewer images.
func (h *Handlers) GetBlob(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	reader, err := h.blobs.NewReader(r.Context(), ref)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logging.Error("Failed to open blob %s: %v", ref, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentTypeForRef(ref))
	w.Header().Set("Cache-Control", immutableCacheControl)
	if _, err := io.Copy(w, reader); err != nil {
		logging.Debug("Blob stream for %s interrupted: %v", ref, err)
	}
}

func contentTypeForRef(ref string) string {
	switch {
	case strings.HasSuffix(ref, ".jpg"), strings.HasSuffix(ref, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(ref, ".png"):
		return "image/png"
	case strings.HasSuffix(ref, ".webp"):
		return "image/webp"
	case strings.HasSuffix(ref, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
