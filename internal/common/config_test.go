package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quaestor.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfigValidates(t *testing.T) {
	config := NewDefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", config.Server.Port)
	}
	if config.Index.Mode != "chroma" {
		t.Errorf("Index.Mode = %q, want chroma", config.Index.Mode)
	}
	if config.Ingest.BatchSize != 20 {
		t.Errorf("Ingest.BatchSize = %d, want 20", config.Ingest.BatchSize)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
environment = "production"

[server]
port = 9090

[ingest]
chunk_size = 500

[summary]
cache_ttl = "24h"
`)

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Environment != "production" {
		t.Errorf("Environment = %q, want production", config.Environment)
	}
	if config.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", config.Server.Port)
	}
	if config.Ingest.ChunkSize != 500 {
		t.Errorf("Ingest.ChunkSize = %d, want 500", config.Ingest.ChunkSize)
	}
	if config.Summary.CacheTTL != 24*time.Hour {
		t.Errorf("Summary.CacheTTL = %v, want 24h", config.Summary.CacheTTL)
	}

	// Untouched settings keep their defaults
	if config.Server.Host != "localhost" {
		t.Errorf("Server.Host = %q, want localhost", config.Server.Host)
	}
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	base := writeConfigFile(t, `
[server]
port = 9090
host = "0.0.0.0"
`)
	override := writeConfigFile(t, `
[server]
port = 9999
`)

	config, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if config.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from later file", config.Server.Port)
	}
	if config.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 from earlier file", config.Server.Host)
	}
}

func TestEnvOverridesBeatFiles(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = 9090
`)

	t.Setenv("QUAESTOR_SERVER_PORT", "7777")
	t.Setenv("QUAESTOR_WATCH_DIR", "/srv/edgar")
	t.Setenv("QUAESTOR_INDEX_MODE", "memory")

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", config.Server.Port)
	}
	if config.Ingest.WatchDir != "/srv/edgar" {
		t.Errorf("Ingest.WatchDir = %q, want /srv/edgar", config.Ingest.WatchDir)
	}
	if config.Index.Mode != "memory" {
		t.Errorf("Index.Mode = %q, want memory", config.Index.Mode)
	}
}

func TestLoadFromFileInvalidValuesRejected(t *testing.T) {
	path := writeConfigFile(t, `
[index]
mode = "elasticsearch"
`)

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected validation error for unknown index mode")
	}
}

func TestLoadFromFileMissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/quaestor.toml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
