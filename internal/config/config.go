package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdresch/go-doc2pdf/internal/dateutil"
	"github.com/mdresch/go-doc2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Field length and value limits. Config files travel through CI systems
// and shared templates, so malformed values fail loud instead of truncating.
const (
	MaxDirLength         = 4096 // PATH_MAX on common filesystems
	MaxBackendNameLength = 20   // "chrome", "cloud"
	MaxTimeoutLength     = 30   // "2m", "90s", "1h30m"
	MaxReportPathLength  = 4096
	MaxConcurrency       = 64 // chunk width ceiling; each slot may hold a browser page
)

// Config holds all configuration for batch PDF conversion.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Batch  BatchConfig  `yaml:"batch"`
	Report ReportConfig `yaml:"report"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir      string `yaml:"defaultDir"`      // Default output directory (empty = same as source)
	TimestampFormat string `yaml:"timestampFormat"` // Header stamp format or preset name (empty = default)
}

// RenderConfig defines PDF rendering options.
type RenderConfig struct {
	Backends []string `yaml:"backends"` // Priority order: "chrome", "cloud" (empty = chrome only)
	Timeout  string   `yaml:"timeout"`  // Per-file render timeout, e.g. "2m" (empty = default)
	Validate bool     `yaml:"validate"` // Structurally validate each PDF before keeping it
}

// BatchConfig defines batch execution options.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"` // Files converted at once (0 = default)
}

// ReportConfig defines run report options.
type ReportConfig struct {
	Path string `yaml:"path"` // JSON report destination (empty = no report)
}

// validBackends lists the rendering backends a config may name.
var validBackends = map[string]bool{
	"chrome": true,
	"cloud":  true,
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	// Validate directories
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxDirLength); err != nil {
		return err
	}

	// Validate timestamp format: presets pass as-is, everything else must parse
	if c.Output.TimestampFormat != "" {
		format := c.Output.TimestampFormat
		if _, ok := dateutil.StampPresets[strings.ToLower(format)]; !ok {
			if _, err := dateutil.ParseStampFormat(format); err != nil {
				return fmt.Errorf("output.timestampFormat: %w", err)
			}
		}
	}

	// Validate backend list
	seen := make(map[string]bool, len(c.Render.Backends))
	for i, name := range c.Render.Backends {
		field := fmt.Sprintf("render.backends[%d]", i)
		if err := validateFieldLength(field, name, MaxBackendNameLength); err != nil {
			return err
		}
		lower := strings.ToLower(name)
		if !validBackends[lower] {
			return fmt.Errorf("%s: unknown backend %q (must be chrome or cloud)", field, name)
		}
		if seen[lower] {
			return fmt.Errorf("%s: backend %q listed twice", field, name)
		}
		seen[lower] = true
	}

	// Validate timeout
	if c.Render.Timeout != "" {
		if err := validateFieldLength("render.timeout", c.Render.Timeout, MaxTimeoutLength); err != nil {
			return err
		}
		d, err := time.ParseDuration(c.Render.Timeout)
		if err != nil {
			return fmt.Errorf("render.timeout: invalid duration %q", c.Render.Timeout)
		}
		if d <= 0 {
			return fmt.Errorf("render.timeout: must be positive, got %s", c.Render.Timeout)
		}
	}

	// Validate concurrency
	if c.Batch.Concurrency < 0 || c.Batch.Concurrency > MaxConcurrency {
		return fmt.Errorf("batch.concurrency: must be between 1 and %d, got %d", MaxConcurrency, c.Batch.Concurrency)
	}

	// Validate report path
	if err := validateFieldLength("report.path", c.Report.Path, MaxReportPathLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration. Zero values mean
// "decide at the command layer": chrome-only backends, default
// concurrency and timeout, no report.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{DefaultDir: ""},
		Output: OutputConfig{DefaultDir: ""},
		Render: RenderConfig{},
		Batch:  BatchConfig{Concurrency: 0},
		Report: ReportConfig{Path: ""},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-doc2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-doc2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
