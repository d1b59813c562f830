package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Hub      HubConfig      `toml:"hub"`
	Datasets DatasetsConfig `toml:"datasets"`
	Paths    PathsConfig    `toml:"paths"`
	Harvest  HarvestConfig  `toml:"harvest"`
	Database DatabaseConfig `toml:"database"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Log      LogConfig      `toml:"log"`
}

// HubConfig points at the dataset registry.
type HubConfig struct {
	BaseURL  string `toml:"base_url"`
	Token    string `toml:"token"`
	Filter   string `toml:"filter"`
	PageSize int    `toml:"page_size"`
}

// DatasetsConfig points at the statistics provider.
type DatasetsConfig struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// PathsConfig locates every table and ledger on disk.
type PathsConfig struct {
	Catalog         string `toml:"catalog"`
	Pairs           string `toml:"pairs"`
	ExternalPairs   string `toml:"external_pairs"`
	Classification  string `toml:"classification"`
	MissingPrimary  string `toml:"missing_primary"`
	MissingValidate string `toml:"missing_validate"`
	StatusReport    string `toml:"status_report"`
}

// HarvestConfig tunes the harvest driver.
type HarvestConfig struct {
	Verbose bool `toml:"verbose"`
}

// DatabaseConfig contains run journal settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps [time.Duration] so TOML strings like "60s" decode into it.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, string(text))
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults. HF_TOKEN overrides hub.token.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations the harvester cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Hub.BaseURL == "":
		return fmt.Errorf("%w: hub.base_url is empty", ErrInvalidConfig)
	case c.Datasets.BaseURL == "":
		return fmt.Errorf("%w: datasets.base_url is empty", ErrInvalidConfig)
	case c.Paths.Catalog == "" || c.Paths.Pairs == "":
		return fmt.Errorf("%w: paths.catalog and paths.pairs are required", ErrInvalidConfig)
	case c.Datasets.RequestsPerSecond < 0:
		return fmt.Errorf("%w: datasets.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyEnv() {
	if token := os.Getenv("HF_TOKEN"); token != "" {
		c.Hub.Token = token
	}
}
