package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gallery-server/internal/pyramid"
)

// InsertTileRecord persists one tile record, but only while the artwork is
// still in the generating state. The status check and the insert happen in
// one statement so a cleanup racing with an in-flight batch can never
// resurrect a tile record after cleanup completed. Returns false when the
// artwork is no longer generating.
func (d *Database) InsertTileRecord(ctx context.Context, rec TileRecord) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_tile_record", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO tiles (artwork_id, level, col, row, blob_ref)
		SELECT ?, ?, ?, ?, ?
		WHERE (SELECT pyramid_status FROM artworks WHERE id = ?) = ?`,
		rec.ArtworkID, rec.Level, rec.Col, rec.Row, rec.BlobRef,
		rec.ArtworkID, string(pyramid.StatusGenerating))
	if err != nil {
		return false, fmt.Errorf("failed to insert tile record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetTileRecord looks up the unique tile record for one coordinate.
func (d *Database) GetTileRecord(ctx context.Context, artworkID string, level, col, row int) (*TileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_tile_record", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := TileRecord{ArtworkID: artworkID, Level: level, Col: col, Row: row}
	err = d.db.QueryRowContext(ctx,
		`SELECT blob_ref FROM tiles WHERE artwork_id = ? AND level = ? AND col = ? AND row = ?`,
		artworkID, level, col, row).Scan(&rec.BlobRef)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tile record: %w", err)
	}
	return &rec, nil
}

// ListTileRecords returns every tile record for an artwork, ordered by
// level then row-major within each level.
func (d *Database) ListTileRecords(ctx context.Context, artworkID string) ([]TileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_tile_records", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT artwork_id, level, col, row, blob_ref FROM tiles
		 WHERE artwork_id = ? ORDER BY level, row, col`, artworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tile records: %w", err)
	}
	defer rows.Close()

	var records []TileRecord
	for rows.Next() {
		var rec TileRecord
		if err = rows.Scan(&rec.ArtworkID, &rec.Level, &rec.Col, &rec.Row, &rec.BlobRef); err != nil {
			return nil, fmt.Errorf("failed to scan tile record: %w", err)
		}
		records = append(records, rec)
	}
	err = rows.Err()
	return records, err
}

// DeleteTileRecord removes one tile record. Deleting a record that does not
// exist is not an error; cleanup is idempotent.
func (d *Database) DeleteTileRecord(ctx context.Context, artworkID string, level, col, row int) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_tile_record", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		`DELETE FROM tiles WHERE artwork_id = ? AND level = ? AND col = ? AND row = ?`,
		artworkID, level, col, row)
	return err
}

// CountTileRecords returns the number of persisted tiles for an artwork.
func (d *Database) CountTileRecords(ctx context.Context, artworkID string) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_tile_records", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tiles WHERE artwork_id = ?`, artworkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tile records: %w", err)
	}
	return count, nil
}
