package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "")
		config := DefaultConfig()

		if config.Hub.BaseURL != "https://huggingface.co" {
			t.Errorf("expected hub base URL https://huggingface.co, got %s", config.Hub.BaseURL)
		}
		if config.Hub.Filter != "task_categories:translation" {
			t.Errorf("expected translation filter, got %s", config.Hub.Filter)
		}
		if config.Datasets.Timeout.Duration != 60*time.Second {
			t.Errorf("expected datasets timeout 60s, got %v", config.Datasets.Timeout.Duration)
		}
		if config.Paths.Catalog != "data/mt_hf.csv" {
			t.Errorf("expected catalog path data/mt_hf.csv, got %s", config.Paths.Catalog)
		}
		if config.Paths.MissingValidate != "references/missing_datasets_v2.txt" {
			t.Errorf("unexpected validate ledger path %s", config.Paths.MissingValidate)
		}
		if config.Database.Path != "./mtcat.db" {
			t.Errorf("expected database path ./mtcat.db, got %s", config.Database.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("HF_TOKEN overrides hub token", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "hf_env")
		if got := DefaultConfig().Hub.Token; got != "hf_env" {
			t.Errorf("expected token from environment, got %q", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Paths.Pairs != DefaultConfig().Paths.Pairs {
			t.Errorf("created config pairs path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[datasets]
base_url = "http://localhost:9000"
timeout = "5s"
requests_per_second = 10

[paths]
catalog = "/tmp/catalog.csv"
pairs = "/tmp/pairs.csv"

[harvest]
verbose = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Datasets.BaseURL != "http://localhost:9000" {
			t.Errorf("expected datasets base URL override, got %s", config.Datasets.BaseURL)
		}
		if config.Datasets.Timeout.Duration != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", config.Datasets.Timeout.Duration)
		}
		if !config.Harvest.Verbose {
			t.Error("expected verbose harvest")
		}
		if config.Hub.BaseURL != "https://huggingface.co" {
			t.Errorf("expected default hub base URL, got %s", config.Hub.BaseURL)
		}
	})

	t.Run("LoadConfig rejects bad duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[datasets]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for bad duration")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Paths.Pairs = ""
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
