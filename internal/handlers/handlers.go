package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gallery-server/internal/blobstore"
	"gallery-server/internal/database"
	"gallery-server/internal/pipeline"
)

// Handlers bundles the HTTP surface of the gallery server.
type Handlers struct {
	db        *database.Database
	blobs     *blobstore.Store
	pipe      *pipeline.Pipeline
	startTime time.Time
}

// New creates the handler set.
func New(db *database.Database, blobs *blobstore.Store, pipe *pipeline.Pipeline) *Handlers {
	return &Handlers{
		db:        db,
		blobs:     blobs,
		pipe:      pipe,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches all routes to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Deep Zoom serving
	r.HandleFunc("/dzi/{id}.dzi", h.GetManifest).Methods(http.MethodGet)
	r.HandleFunc("/dzi/{id}_files/{level}/{tile}", h.GetTile).Methods(http.MethodGet)
	r.HandleFunc("/blobs/{ref:.+}", h.GetBlob).Methods(http.MethodGet)

	// Pipeline API consumed by the CRUD layer
	r.HandleFunc("/api/artworks/{id}", h.UpsertArtwork).Methods(http.MethodPut)
	r.HandleFunc("/api/artworks/{id}", h.GetArtwork).Methods(http.MethodGet)
	r.HandleFunc("/api/artworks/{id}/pyramid", h.StartPyramid).Methods(http.MethodPost)
	r.HandleFunc("/api/artworks/{id}/pyramid", h.GetPyramidStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/artworks/{id}/pyramid", h.DeletePyramid).Methods(http.MethodDelete)

	// Health and version
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}
