package database

import (
	"context"
	"errors"
	"testing"

	"gallery-server/internal/pyramid"
)

func seedGeneratingArtwork(t *testing.T, db *Database, id string) {
	t.Helper()
	ctx := context.Background()

	if err := db.UpsertArtwork(ctx, id); err != nil {
		t.Fatalf("UpsertArtwork failed: %v", err)
	}
	if err := db.SetPyramidStatus(ctx, id, pyramid.StatusPending); err != nil {
		t.Fatalf("SetPyramidStatus failed: %v", err)
	}
	if err := db.SetPyramidStatus(ctx, id, pyramid.StatusGenerating); err != nil {
		t.Fatalf("SetPyramidStatus failed: %v", err)
	}
}

func TestInsertTileRecordRequiresGenerating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedGeneratingArtwork(t, db, "art-1")

	rec := TileRecord{ArtworkID: "art-1", Level: 3, Col: 1, Row: 2, BlobRef: "tiles/art-1/3/1_2.jpg"}
	ok, err := db.InsertTileRecord(ctx, rec)
	if err != nil {
		t.Fatalf("InsertTileRecord failed: %v", err)
	}
	if !ok {
		t.Fatal("insert should succeed while status is generating")
	}

	// Once the run is no longer generating, inserts from a stale worker
	// must be rejected rather than leave orphaned records behind.
	if err := db.SetPyramidStatus(ctx, "art-1", pyramid.StatusFailed); err != nil {
		t.Fatalf("SetPyramidStatus failed: %v", err)
	}
	ok, err = db.InsertTileRecord(ctx, TileRecord{ArtworkID: "art-1", Level: 3, Col: 0, Row: 0, BlobRef: "tiles/art-1/3/0_0.jpg"})
	if err != nil {
		t.Fatalf("InsertTileRecord failed: %v", err)
	}
	if ok {
		t.Error("insert should be rejected once status is not generating")
	}
	if n, err := db.CountTileRecords(ctx, "art-1"); err != nil || n != 1 {
		t.Errorf("tile count = %d, %v; want 1, nil", n, err)
	}
}

func TestGetTileRecord(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedGeneratingArtwork(t, db, "art-1")

	rec := TileRecord{ArtworkID: "art-1", Level: 2, Col: 0, Row: 1, BlobRef: "tiles/art-1/2/0_1.jpg"}
	if _, err := db.InsertTileRecord(ctx, rec); err != nil {
		t.Fatalf("InsertTileRecord failed: %v", err)
	}

	got, err := db.GetTileRecord(ctx, "art-1", 2, 0, 1)
	if err != nil {
		t.Fatalf("GetTileRecord failed: %v", err)
	}
	if *got != rec {
		t.Errorf("got %+v, want %+v", *got, rec)
	}

	if _, err := db.GetTileRecord(ctx, "art-1", 2, 5, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing tile, got %v", err)
	}
}

func TestListTileRecordsOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedGeneratingArtwork(t, db, "art-1")

	// Insert deliberately out of order.
	inserts := []TileRecord{
		{ArtworkID: "art-1", Level: 1, Col: 1, Row: 0, BlobRef: "c"},
		{ArtworkID: "art-1", Level: 0, Col: 0, Row: 0, BlobRef: "a"},
		{ArtworkID: "art-1", Level: 1, Col: 0, Row: 0, BlobRef: "b"},
		{ArtworkID: "art-1", Level: 1, Col: 0, Row: 1, BlobRef: "d"},
	}
	for _, rec := range inserts {
		if _, err := db.InsertTileRecord(ctx, rec); err != nil {
			t.Fatalf("InsertTileRecord failed: %v", err)
		}
	}

	recs, err := db.ListTileRecords(ctx, "art-1")
	if err != nil {
		t.Fatalf("ListTileRecords failed: %v", err)
	}
	wantRefs := []string{"a", "b", "c", "d"}
	if len(recs) != len(wantRefs) {
		t.Fatalf("got %d records, want %d", len(recs), len(wantRefs))
	}
	for i, want := range wantRefs {
		if recs[i].BlobRef != want {
			t.Errorf("record %d ref %q, want %q", i, recs[i].BlobRef, want)
		}
	}
}

func TestDeleteTileRecord(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedGeneratingArtwork(t, db, "art-1")

	if _, err := db.InsertTileRecord(ctx, TileRecord{ArtworkID: "art-1", Level: 0, Col: 0, Row: 0, BlobRef: "a"}); err != nil {
		t.Fatalf("InsertTileRecord failed: %v", err)
	}
	if err := db.DeleteTileRecord(ctx, "art-1", 0, 0, 0); err != nil {
		t.Fatalf("DeleteTileRecord failed: %v", err)
	}
	if n, err := db.CountTileRecords(ctx, "art-1"); err != nil || n != 0 {
		t.Errorf("tile count = %d, %v; want 0, nil", n, err)
	}

	// Deleting a missing record is not an error.
	if err := db.DeleteTileRecord(ctx, "art-1", 0, 0, 0); err != nil {
		t.Errorf("deleting absent record should be a no-op, got %v", err)
	}
}
