package config

import (
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
)

// Config represents the complete reader configuration
type Config struct {
	Reader  ReaderConfig  `mapstructure:"reader"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ReaderConfig represents chunk reader configuration
type ReaderConfig struct {
	DataDir string `mapstructure:"data_dir"` // Base directory for data files
	// Compression names the compressor expected in chunk descriptors when a
	// tool has no descriptor in hand yet (e.g. for reporting); actual decode
	// always follows the descriptor
	Compression string `mapstructure:"compression"`
	OutputDir   string `mapstructure:"output_dir"` // Where tools write dumps/exports
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// Validate checks configuration values
func (c *Config) Validate() error {
	if c.Reader.DataDir == "" {
		return fmt.Errorf("reader.data_dir must not be empty")
	}
	if _, err := compression.Parse(c.Reader.Compression); err != nil {
		return fmt.Errorf("reader.compression: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Reader: ReaderConfig{
			DataDir:     "./data",
			Compression: "snappy",
			OutputDir:   "./dump",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
