// =============================================================================
// Payments Engine - Configuration Module
// =============================================================================
//
// This module is responsible for loading the optional engine configuration
// file. Every setting has a default, so the engine runs without any file at
// all; command-line flags override whatever the file provides.
//
// EXAMPLE (config.yaml):
//   log_level: debug
//   log_format: json
//   log_file: ./logs/engine.log
//   output_format: csv
//   rejections_dir: ./rejections
//   csv:
//     delimiter: ","
//   xlsx:
//     sheet: Transactions
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file looked up when --config is not given.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the engine configuration.
type Config struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the zap encoder: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// LogFile is an optional path for the log. Empty means stderr.
	LogFile string `yaml:"log_file"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is the account report format: "csv", "xlsx" or "xml".
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// OutputFile is an optional report path. Empty means stdout.
	// Placeholders {uuid} and {timestamp} are expanded.
	OutputFile string `yaml:"output_file"`

	// RejectionsDir, when set, receives a text log of every rejected record.
	RejectionsDir string `yaml:"rejections_dir"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// CSV contains settings for parsing CSV transaction logs.
	CSV CSVSettings `yaml:"csv"`

	// XLSX contains settings for reading XLSX transaction logs.
	XLSX XLSXSettings `yaml:"xlsx"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// XLSXSettings contains settings for reading XLSX workbooks.
type XLSXSettings struct {
	// Sheet is the worksheet holding the transactions.
	// Default: the first sheet of the workbook.
	Sheet string `yaml:"sheet"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from configPath.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required: When false, a missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "csv"
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}

	switch c.OutputFormat {
	case "csv", "xlsx", "xml":
	default:
		return fmt.Errorf("unsupported output_format %q", c.OutputFormat)
	}

	if _, err := c.CSV.Comma(); err != nil {
		return err
	}

	return nil
}

// Comma resolves the configured delimiter to a rune. Named aliases such as
// "tab" and "pipe" are accepted.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "", ",", "comma":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	runes := []rune(s.Delimiter)
	if len(runes) != 1 || runes[0] == '"' || runes[0] == '\r' || runes[0] == '\n' {
		return 0, fmt.Errorf("unsupported csv delimiter %q", s.Delimiter)
	}

	return runes[0], nil
}
