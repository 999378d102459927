package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeStats struct {
	called bool
}

func (f *fakeStats) UpdateDBMetrics() { f.called = true }

func TestCollectorCollect(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gallery.db")
	if err := os.WriteFile(dbPath, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test db file: %v", err)
	}

	stats := &fakeStats{}
	c := NewCollector(dbPath, stats, time.Minute)
	c.collect()

	if !stats.called {
		t.Error("collect should refresh connection stats")
	}
}

func TestCollectorMissingFiles(t *testing.T) {
	// Collecting against a database path with no WAL/SHM files must not
	// panic or error; the gauges are just zeroed.
	c := NewCollector(filepath.Join(t.TempDir(), "missing.db"), nil, time.Minute)
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(filepath.Join(t.TempDir(), "gallery.db"), &fakeStats{}, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}

func TestInitializeMetrics(t *testing.T) {
	// Must be callable repeatedly without panicking.
	InitializeMetrics()
	InitializeMetrics()
}
