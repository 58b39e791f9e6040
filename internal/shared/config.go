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
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Search   SearchConfig   `toml:"search"`
	Import   ImportConfig   `toml:"import"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path           string `toml:"path"`
	MaxOpenConns   int    `toml:"max_open_conns"`
	MaxIdleConns   int    `toml:"max_idle_conns"`
	QueryTimeoutMS int    `toml:"query_timeout_ms"`
}

// QueryTimeout returns the per-query timeout, defaulting to 5s when unset.
func (d DatabaseConfig) QueryTimeout() time.Duration {
	if d.QueryTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(d.QueryTimeoutMS) * time.Millisecond
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string  `toml:"host"`
	Port          int     `toml:"port"`
	RatePerSecond float64 `toml:"rate_per_second"`
	RateBurst     int     `toml:"rate_burst"`
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	Secret        string `toml:"secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

// TokenTTL returns the token validity duration, defaulting to 24h when unset.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// SearchConfig contains search index update settings.
type SearchConfig struct {
	QueueSize     int `toml:"queue_size"`
	StalenessMS   int `toml:"staleness_ms"`
	FlushBatchMax int `toml:"flush_batch_max"`
}

// Staleness returns the maximum deferred-update delay, defaulting to 1s.
func (s SearchConfig) Staleness() time.Duration {
	if s.StalenessMS <= 0 {
		return time.Second
	}
	return time.Duration(s.StalenessMS) * time.Millisecond
}

// ImportConfig contains bulk catalog import settings.
type ImportConfig struct {
	NumWorkers int     `toml:"num_workers"`
	RateLimit  float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
