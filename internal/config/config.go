package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/configurator"
)

// Config represents the extractsum configuration
type Config struct {
	// Summarizer contains summarization-related configuration.
	Summarizer struct {
		// Provider is the summarizer to use ("frequency", "lead").
		Provider string `json:"provider" env:"SUMMARIZER_PROVIDER" validate:"required"`

		// DefaultLength is the number of sentences returned when none is requested.
		DefaultLength int `json:"default_length" env:"SUMMARIZER_DEFAULT_LENGTH" validate:"min:1"`

		// Order arranges selected sentences ("rank", "position").
		Order string `json:"order" env:"SUMMARIZER_ORDER"`

		// MaxInputBytes bounds the text accepted by the serving layers.
		MaxInputBytes int `json:"max_input_bytes" env:"SUMMARIZER_MAX_INPUT_BYTES" validate:"min:1"`
	} `json:"summarizer"`

	// Store contains storage-related configuration.
	Store struct {
		// Enabled turns on persistence of produced summaries.
		Enabled bool `json:"enabled" env:"STORE_ENABLED"`

		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`
	} `json:"store"`

	// HTTP contains web server configuration.
	HTTP struct {
		// Addr is the listen address of the web server.
		Addr string `json:"addr" env:"HTTP_ADDR" validate:"required"`

		// RatePerSecond is the sustained request rate. Zero disables limiting.
		RatePerSecond int `json:"rate_per_second" env:"HTTP_RATE_PER_SECOND"`

		// Burst is the number of requests allowed above the sustained rate.
		Burst int `json:"burst" env:"HTTP_BURST"`
	} `json:"http"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".extractsumconfig"
	DefaultEnvPrefix      = "EXTRACTSUM"
	DefaultProvider       = "frequency"
	DefaultLength         = 4
	DefaultOrder          = "rank"
	DefaultMaxInputBytes  = 1 << 20
	DefaultSQLitePath     = ".extractsum.db"
	DefaultHTTPAddr       = ":8080"
	DefaultRatePerSecond  = 10
	DefaultBurst          = 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Summarizer.Provider = DefaultProvider
	config.Summarizer.DefaultLength = DefaultLength
	config.Summarizer.Order = DefaultOrder
	config.Summarizer.MaxInputBytes = DefaultMaxInputBytes
	config.Store.Enabled = false
	config.Store.SQLitePath = DefaultSQLitePath
	config.HTTP.Addr = DefaultHTTPAddr
	config.HTTP.RatePerSecond = DefaultRatePerSecond
	config.HTTP.Burst = DefaultBurst
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path.
// A missing file yields the defaults overridden by EXTRACTSUM_* variables.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// stdout carries CLI output and the MCP stream.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		config = config.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
	}

	config = config.
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := config.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks the values the struct tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Summarizer.Provider) {
	case "frequency", "lead":
	default:
		return fmt.Errorf("unknown summarizer provider %q", c.Summarizer.Provider)
	}

	switch strings.ToLower(c.Summarizer.Order) {
	case "", "rank", "position":
	default:
		return fmt.Errorf("unknown summary order %q", c.Summarizer.Order)
	}

	if c.HTTP.RatePerSecond < 0 {
		return fmt.Errorf("http.rate_per_second must not be negative")
	}
	if c.HTTP.RatePerSecond > 0 && c.HTTP.Burst < 1 {
		return fmt.Errorf("http.burst must be at least 1 when rate limiting is enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	return nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
