package pyramid

import (
	"reflect"
	"testing"
)

func TestMaxLevel(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		expected int
	}{
		{"1x1", 1, 1, 0},
		{"2x2", 2, 2, 1},
		{"exact power of two", 512, 512, 9},
		{"just over a power of two", 513, 100, 10},
		{"1024x768", 1024, 768, 10},
		{"600x400", 600, 400, 10},
		{"4000x3000", 4000, 3000, 12},
		{"tall image", 300, 4000, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxLevel(tt.width, tt.height)
			if got != tt.expected {
				t.Errorf("MaxLevel(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestLevelDims(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		level   int
		wantW   int
		wantH   int
	}{
		{"full resolution", 4000, 3000, 12, 4000, 3000},
		{"one level down", 4000, 3000, 11, 2000, 1500},
		{"two levels down", 4000, 3000, 10, 1000, 750},
		{"rounds up", 5, 5, 2, 3, 3},
		{"rounds up again", 5, 5, 1, 2, 2},
		{"level zero", 5, 5, 0, 1, 1},
		{"odd halving", 601, 401, 9, 301, 201},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxLevel := MaxLevel(tt.width, tt.height)
			gotW, gotH := LevelDims(tt.width, tt.height, tt.level, maxLevel)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("LevelDims(%d, %d, %d, %d) = %dx%d, want %dx%d",
					tt.width, tt.height, tt.level, maxLevel, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		name     string
		levelW   int
		levelH   int
		wantCols int
		wantRows int
	}{
		{"single tile", 512, 512, 1, 1},
		{"one pixel over", 513, 512, 2, 1},
		{"tiny", 1, 1, 1, 1},
		{"wide", 2000, 400, 4, 1},
		{"grid", 1500, 1100, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := Grid(tt.levelW, tt.levelH)
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("Grid(%d, %d) = %dx%d, want %dx%d",
					tt.levelW, tt.levelH, cols, rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestTilesForLevelRowMajor(t *testing.T) {
	maxLevel := MaxLevel(1500, 1100)
	specs := TilesForLevel(1500, 1100, maxLevel, maxLevel)

	// 3x3 grid at full resolution.
	if len(specs) != 9 {
		t.Fatalf("expected 9 tiles, got %d", len(specs))
	}

	expected := []TileSpec{
		{maxLevel, 0, 0}, {maxLevel, 1, 0}, {maxLevel, 2, 0},
		{maxLevel, 0, 1}, {maxLevel, 1, 1}, {maxLevel, 2, 1},
		{maxLevel, 0, 2}, {maxLevel, 1, 2}, {maxLevel, 2, 2},
	}
	if !reflect.DeepEqual(specs, expected) {
		t.Errorf("tiles not in row-major order: got %v", specs)
	}
}

func TestTilesForLevelCoversImage(t *testing.T) {
	// Every coordinate must lie inside [0,cols) x [0,rows), with every cell
	// present exactly once.
	dims := []struct{ w, h int }{
		{600, 400},
		{4000, 3000},
		{1, 1},
		{512, 512},
		{513, 513},
	}

	for _, d := range dims {
		maxLevel := MaxLevel(d.w, d.h)
		for level := 0; level <= maxLevel; level++ {
			levelW, levelH := LevelDims(d.w, d.h, level, maxLevel)
			cols, rows := Grid(levelW, levelH)
			specs := TilesForLevel(d.w, d.h, level, maxLevel)

			if len(specs) != cols*rows {
				t.Errorf("%dx%d level %d: %d tiles, want %d", d.w, d.h, level, len(specs), cols*rows)
			}

			seen := make(map[TileSpec]bool, len(specs))
			for _, s := range specs {
				if s.Col < 0 || s.Col >= cols || s.Row < 0 || s.Row >= rows {
					t.Errorf("%dx%d level %d: tile %v outside %dx%d grid", d.w, d.h, level, s, cols, rows)
				}
				if seen[s] {
					t.Errorf("%dx%d level %d: duplicate tile %v", d.w, d.h, level, s)
				}
				seen[s] = true
			}
		}
	}
}

func TestAllTileSpecs(t *testing.T) {
	t.Run("count matches TileCount", func(t *testing.T) {
		for _, d := range []struct{ w, h int }{{600, 400}, {1024, 768}, {4000, 3000}, {1, 1}} {
			specs := AllTileSpecs(d.w, d.h)
			if len(specs) != TileCount(d.w, d.h) {
				t.Errorf("%dx%d: AllTileSpecs len %d != TileCount %d",
					d.w, d.h, len(specs), TileCount(d.w, d.h))
			}
		}
	})

	t.Run("600x400 exact count", func(t *testing.T) {
		// Levels 0-9 each fit in one tile; level 10 (600x400) needs 2x1.
		specs := AllTileSpecs(600, 400)
		if len(specs) != 12 {
			t.Errorf("expected 12 tiles for 600x400, got %d", len(specs))
		}
	})

	t.Run("pure and idempotent", func(t *testing.T) {
		first := AllTileSpecs(1024, 768)
		second := AllTileSpecs(1024, 768)
		if !reflect.DeepEqual(first, second) {
			t.Error("repeated calls returned different tile lists")
		}
	})

	t.Run("level zero is a single tile", func(t *testing.T) {
		for _, d := range []struct{ w, h int }{{600, 400}, {4000, 3000}, {9999, 2}} {
			specs := AllTileSpecs(d.w, d.h)
			if len(specs) == 0 || specs[0] != (TileSpec{Level: 0, Col: 0, Row: 0}) {
				t.Errorf("%dx%d: first spec %v, want level 0 single tile", d.w, d.h, specs[0])
			}
			for _, s := range specs[1:] {
				if s.Level == 0 {
					t.Errorf("%dx%d: unexpected extra level-0 tile %v", d.w, d.h, s)
				}
			}
		}
	})
}

func TestNewMetadata(t *testing.T) {
	md := NewMetadata(4000, 3000)

	if md.Width != 4000 || md.Height != 3000 {
		t.Errorf("metadata size %dx%d, want 4000x3000", md.Width, md.Height)
	}
	if md.TileSize != TileSize || md.Overlap != Overlap || md.Format != Format {
		t.Errorf("metadata constants not applied: %+v", md)
	}
	if md.MaxLevel != 12 {
		t.Errorf("metadata maxLevel %d, want 12", md.MaxLevel)
	}
}
