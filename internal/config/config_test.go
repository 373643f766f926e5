package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "redis", Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d: expected error", port)
		}
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing addrs")
	}
	if err.Error() != "database.addrs is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "valkey"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	expected := `database.driver must be "redis", got "valkey"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_NegativeCacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTLSec = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http timeouts = %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg.Database.Driver)
	}
	if cfg.Search.IndexName != "ufo-avistamentos" {
		t.Errorf("index = %q", cfg.Search.IndexName)
	}
	if cfg.Search.StateBucketLimit != 1000 {
		t.Errorf("state bucket limit = %d", cfg.Search.StateBucketLimit)
	}
	if cfg.Catalog.Path != "ufotracker.db" || cfg.Catalog.MaxImportSize != 500 {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Cache.TTLSec != 0 || cfg.Cache.Shared {
		t.Errorf("cache = %+v, want zero value", cfg.Cache)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Search:  SearchConfig{IndexName: "custom", StateBucketLimit: 27},
		Catalog: CatalogConfig{Path: ":memory:"},
	}
	cfg.ApplyDefaults()

	if cfg.Search.IndexName != "custom" || cfg.Search.StateBucketLimit != 27 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Catalog.Path != ":memory:" {
		t.Errorf("catalog path = %q", cfg.Catalog.Path)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("UFO_TEST_ADDR", "redis:6379")

	got := string(expandEnvVars([]byte("a: ${UFO_TEST_ADDR}\nb: ${UFO_TEST_MISSING:-fallback}\nc: ${UFO_TEST_MISSING}")))
	want := "a: redis:6379\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("UFO_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`http:
  port: ${UFO_TEST_PORT}
database:
  addrs: ["localhost:6379"]
cache:
  shared: true
  ttl_sec: 60
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if !cfg.Cache.Shared || cfg.Cache.TTLSec != 60 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
