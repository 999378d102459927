package startup

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		if got := getEnv("STARTUP_TEST_UNSET", "fallback"); got != "fallback" {
			t.Errorf("got %q, want fallback", got)
		}
	})

	t.Run("returns env value when set", func(t *testing.T) {
		t.Setenv("STARTUP_TEST_SET", "custom")
		if got := getEnv("STARTUP_TEST_SET", "fallback"); got != "custom" {
			t.Errorf("got %q, want custom", got)
		}
	})
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"0", true, false},
		{"notabool", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("STARTUP_TEST_BOOL", tt.value)
			}
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		def   int
		want  int
	}{
		{"42", 10, 42},
		{"notanint", 10, 10},
		{"", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("STARTUP_TEST_INT", tt.value)
			}
			if got := getEnvInt("STARTUP_TEST_INT", tt.def); got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	noop := func(w http.ResponseWriter, r *http.Request) {}
	router.HandleFunc("/dzi/{id}.dzi", noop).Methods(http.MethodGet)
	router.HandleFunc("/api/artworks/{id}/pyramid", noop).Methods(http.MethodGet, http.MethodPost)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}

	found := map[string]bool{}
	for _, route := range routes {
		found[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /dzi/{id}.dzi",
		"GET /api/artworks/{id}/pyramid",
		"POST /api/artworks/{id}/pyramid",
	} {
		if !found[want] {
			t.Errorf("route %q not found in %v", want, found)
		}
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/dzi/{id}.dzi", "dzi"},
		{"/api/artworks/{id}/pyramid", "api/artworks"},
		{"/healthz", "healthz"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadConfigUsesEnvironment(t *testing.T) {
	t.Setenv("BLOB_LOCATION", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("PORT", "8181")
	t.Setenv("TILE_BATCH_SIZE", "7")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != "8181" {
		t.Errorf("Port = %q, want 8181", config.Port)
	}
	if config.TileBatchSize != 7 {
		t.Errorf("TileBatchSize = %d, want 7", config.TileBatchSize)
	}
	if config.DatabasePath == "" {
		t.Error("DatabasePath should be derived")
	}
}
