package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gallery-server/internal/pyramid"
)

// UpsertArtwork ensures an artwork row exists for the given id. Existing
// rows are left untouched; the CRUD layer owns everything but the pipeline
// fields.
func (d *Database) UpsertArtwork(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_artwork", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO artworks (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, id)
	return err
}

// GetArtwork retrieves the pipeline fields of one artwork.
func (d *Database) GetArtwork(ctx context.Context, id string) (*Artwork, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_artwork", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	SELECT id, source_ref, thumbnail_ref, viewer_ref, pyramid_status,
	       pyr_width, pyr_height, pyr_tile_size, pyr_overlap, pyr_format, pyr_max_level,
	       created_at, updated_at
	FROM artworks WHERE id = ?
	`

	var (
		a         Artwork
		status    string
		width     sql.NullInt64
		height    sql.NullInt64
		tileSize  sql.NullInt64
		overlap   sql.NullInt64
		format    sql.NullString
		maxLevel  sql.NullInt64
		createdAt int64
		updatedAt int64
	)

	err = d.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.SourceRef, &a.ThumbnailRef, &a.ViewerRef, &status,
		&width, &height, &tileSize, &overlap, &format, &maxLevel,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artwork %s: %w", id, err)
	}

	a.PyramidStatus = pyramid.Status(status)
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)

	if width.Valid && height.Valid && maxLevel.Valid {
		a.Pyramid = &pyramid.Metadata{
			Width:    int(width.Int64),
			Height:   int(height.Int64),
			TileSize: int(tileSize.Int64),
			Overlap:  int(overlap.Int64),
			Format:   format.String,
			MaxLevel: int(maxLevel.Int64),
		}
	}

	return &a, nil
}

// SetSourceRef records the artwork's current source image reference.
func (d *Database) SetSourceRef(ctx context.Context, id, sourceRef string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_source_ref", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.execOnArtwork(ctx, id,
		`UPDATE artworks SET source_ref = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		sourceRef, id)
	return err
}

// SetDerivativeRefs records the thumbnail and viewer blob references.
func (d *Database) SetDerivativeRefs(ctx context.Context, id, thumbnailRef, viewerRef string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_derivative_refs", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.execOnArtwork(ctx, id,
		`UPDATE artworks SET thumbnail_ref = ?, viewer_ref = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		thumbnailRef, viewerRef, id)
	return err
}

// SetPyramidMetadata persists the pyramid geometry for an artwork.
func (d *Database) SetPyramidMetadata(ctx context.Context, id string, md pyramid.Metadata) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_pyramid_metadata", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.execOnArtwork(ctx, id, `
		UPDATE artworks SET
			pyr_width = ?, pyr_height = ?, pyr_tile_size = ?,
			pyr_overlap = ?, pyr_format = ?, pyr_max_level = ?,
			updated_at = strftime('%s', 'now')
		WHERE id = ?`,
		md.Width, md.Height, md.TileSize, md.Overlap, md.Format, md.MaxLevel, id)
	return err
}

// ClearPyramidMetadata removes the pyramid geometry from an artwork.
func (d *Database) ClearPyramidMetadata(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("clear_pyramid_metadata", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.execOnArtwork(ctx, id, `
		UPDATE artworks SET
			pyr_width = NULL, pyr_height = NULL, pyr_tile_size = NULL,
			pyr_overlap = NULL, pyr_format = NULL, pyr_max_level = NULL,
			updated_at = strftime('%s', 'now')
		WHERE id = ?`, id)
	return err
}

// SetPyramidStatus unconditionally sets the pyramid status.
func (d *Database) SetPyramidStatus(ctx context.Context, id string, status pyramid.Status) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_pyramid_status", start, err) }()

	if !status.Valid() {
		err = fmt.Errorf("invalid pyramid status %q", status)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.execOnArtwork(ctx, id,
		`UPDATE artworks SET pyramid_status = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		string(status), id)
	return err
}

// CasPyramidStatus sets the status only if the current value matches from,
// reporting whether the transition was applied. Used for the
// pending -> generating flip so a cleaned-up pyramid is never resurrected.
func (d *Database) CasPyramidStatus(ctx context.Context, id string, from, to pyramid.Status) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("cas_pyramid_status", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		`UPDATE artworks SET pyramid_status = ?, updated_at = strftime('%s', 'now')
		 WHERE id = ? AND pyramid_status = ?`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition pyramid status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetPyramidStatus returns only the status of one artwork.
func (d *Database) GetPyramidStatus(ctx context.Context, id string) (pyramid.Status, error) {
	a, err := d.GetArtwork(ctx, id)
	if err != nil {
		return "", err
	}
	return a.PyramidStatus, nil
}

// execOnArtwork runs an UPDATE that must touch exactly one artwork row,
// turning a zero-row update into ErrNotFound.
func (d *Database) execOnArtwork(ctx context.Context, id, query string, args ...interface{}) error {
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update artwork %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
