package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := []byte("jpeg bytes go here")
	if err := store.Put(ctx, "derivatives/a.jpg", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "derivatives/a.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), "no/such/blob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewReaderStreams(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sources/s.jpg", []byte("streamed")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	r, err := store.NewReader(ctx, "sources/s.jpg")
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "streamed" {
		t.Errorf("got %q, want %q", data, "streamed")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "tiles/a/0/0_0.jpg", []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "tiles/a/0/0_0.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "tiles/a/0/0_0.jpg"); err != nil {
		t.Errorf("deleting absent blob should be a no-op, got %v", err)
	}

	ok, err := store.Exists(ctx, "tiles/a/0/0_0.jpg")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("blob should be gone after delete")
	}
}

func TestOverwriteReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "tiles/a/1/0_0.jpg", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "tiles/a/1/0_0.jpg", []byte("new")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "tiles/a/1/0_0.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}
}

func TestNewRef(t *testing.T) {
	a := NewRef("derivatives", ".jpg")
	b := NewRef("derivatives", ".jpg")
	if a == b {
		t.Error("refs must be unique")
	}
	if !strings.HasPrefix(a, "derivatives/") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("malformed ref %q", a)
	}
}

func TestTileRef(t *testing.T) {
	got := TileRef("art-1", 3, 2, 5)
	want := "tiles/art-1/3/2_5.jpg"
	if got != want {
		t.Errorf("TileRef = %q, want %q", got, want)
	}
}
