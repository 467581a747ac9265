package common

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/fapiao-tools/invoice-recon/constants"
)

// Config holds all application configuration. Precedence, lowest to
// highest: defaults, YAML config file, RECON_* environment variables, CLI
// flags (applied by the command layer).
type Config struct {
	// Paths are set from CLI arguments, never from the file.
	InputPath  string `yaml:"-"`
	OutputPath string `yaml:"-"`

	PDFDir    string `yaml:"pdf_dir"`
	Recursive bool   `yaml:"recursive"`

	Tolerance   float64 `yaml:"tolerance"`
	InputSheet  string  `yaml:"input_sheet"`
	OutputSheet string  `yaml:"output_sheet"`

	// HistoryDSN enables the run-history store. postgres:// DSNs use the
	// pgx driver, anything else is a SQLite file path. Empty = disabled.
	HistoryDSN string `yaml:"history_dsn"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Tolerance:   0.01,
		InputSheet:  constants.InputSheetName,
		OutputSheet: constants.OutputSheetName,
		LogLevel:    "info",
	}
}

// LoadConfig builds the effective configuration. A missing config file is
// only an error when the path was explicitly given.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := ValidateConfigDocument(data); err != nil {
				return cfg, err
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %q: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// optional default location, fine to skip
		default:
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	cfg.PDFDir = getEnv("RECON_PDF_DIR", cfg.PDFDir)
	cfg.HistoryDSN = getEnv("RECON_HISTORY_DSN", cfg.HistoryDSN)
	cfg.LogLevel = getEnv("RECON_LOG_LEVEL", cfg.LogLevel)
	cfg.Tolerance = getEnvAsFloat("RECON_TOLERANCE", cfg.Tolerance)

	if cfg.Tolerance <= 0 {
		return cfg, NewAppError("CONFIG_ERROR", "tolerance must be positive", ErrInvalidInput)
	}
	if cfg.InputSheet == "" || cfg.OutputSheet == "" {
		return cfg, NewAppError("CONFIG_ERROR", "sheet names must not be empty", ErrInvalidInput)
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
