// Package blobstore stores artwork binaries (source uploads, derivatives,
// and pyramid tiles) behind a portable bucket abstraction. Local disk via
// fileblob is the default; any bucket URL understood by gocloud.dev works
// the same way.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"gocloud.dev/gcerrors"

	"gallery-server/internal/logging"
	"gallery-server/internal/metrics"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Store wraps a blob bucket with reference naming and instrumentation.
type Store struct {
	bucket *blob.Bucket
	spec   string
}

// Open creates a store from a location spec. A spec containing a URL scheme
// ("gs://photos-bucket", "file:///var/lib/gallery/blobs") is opened through
// the gocloud URL muxer; anything else is treated as a local directory,
// created on demand.
func Open(ctx context.Context, spec string) (*Store, error) {
	var (
		bucket *blob.Bucket
		err    error
	)
	if strings.Contains(spec, "://") {
		bucket, err = blob.OpenBucket(ctx, spec)
	} else {
		bucket, err = fileblob.OpenBucket(spec, &fileblob.Options{CreateDir: true})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket %q: %w", spec, err)
	}
	logging.Info("Blob store opened at %s", spec)
	return &Store{bucket: bucket, spec: spec}, nil
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// Location returns the bucket location the store was opened with.
func (s *Store) Location() string {
	return s.spec
}

// NewRef mints a fresh reference under the given prefix, e.g.
// "derivatives/5f0c....jpg". References are opaque to callers.
func NewRef(prefix, ext string) string {
	return prefix + "/" + uuid.NewString() + ext
}

// TileRef returns the deterministic reference for a pyramid tile. Tiles are
// addressed by position so a re-run overwrites rather than accumulates.
func TileRef(artworkID string, level, col, row int) string {
	return fmt.Sprintf("tiles/%s/%d/%d_%d.jpg", artworkID, level, col, row)
}

// Put writes data under ref, replacing any existing blob.
func (s *Store) Put(ctx context.Context, ref string, data []byte) error {
	start := time.Now()
	err := s.bucket.WriteAll(ctx, ref, data, nil)
	s.record("put", start, err)
	if err != nil {
		return fmt.Errorf("failed to write blob %q: %w", ref, err)
	}
	return nil
}

// Get reads the full contents of the blob at ref.
func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	start := time.Now()
	data, err := s.bucket.ReadAll(ctx, ref)
	s.record("get", start, err)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob %q: %w", ref, err)
	}
	return data, nil
}

// NewReader opens a streaming reader for the blob at ref. The caller must
// close it.
func (s *Store) NewReader(ctx context.Context, ref string) (io.ReadCloser, error) {
	start := time.Now()
	r, err := s.bucket.NewReader(ctx, ref, nil)
	s.record("get", start, err)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob %q: %w", ref, err)
	}
	return r, nil
}

// Delete removes the blob at ref. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, ref string) error {
	start := time.Now()
	err := s.bucket.Delete(ctx, ref)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		err = nil
	}
	s.record("delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", ref, err)
	}
	return nil
}

// Exists reports whether a blob is present at ref.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	start := time.Now()
	ok, err := s.bucket.Exists(ctx, ref)
	s.record("exists", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to stat blob %q: %w", ref, err)
	}
	return ok, nil
}

func (s *Store) record(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.BlobOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.BlobOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
