package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "https://system.nytevibe.com/api" {
			t.Errorf("expected default API base URL, got %s", config.API.BaseURL)
		}

		if config.Storage.Backend != "file" {
			t.Errorf("expected default storage backend file, got %s", config.Storage.Backend)
		}

		if config.Database.Path != "./nyte.db" {
			t.Errorf("expected database path ./nyte.db, got %s", config.Database.Path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "http://localhost:9090/api"
timeout_seconds = 5

[storage]
backend = "sqlite"
path = "/custom/credentials.json"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://localhost:9090/api" {
			t.Errorf("expected API base URL http://localhost:9090/api, got %s", config.API.BaseURL)
		}

		if config.Storage.Backend != "sqlite" {
			t.Errorf("expected storage backend sqlite, got %s", config.Storage.Backend)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("CredentialPath", func(t *testing.T) {
		explicit := StorageConfig{Path: "/tmp/creds.json"}
		path, err := explicit.CredentialPath()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if path != "/tmp/creds.json" {
			t.Errorf("expected explicit path, got %s", path)
		}

		implicit := StorageConfig{}
		path, err = implicit.CredentialPath()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Base(path) != "credentials.json" {
			t.Errorf("expected default credentials.json path, got %s", path)
		}
	})
}
