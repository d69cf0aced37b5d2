package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mdresch/go-doc2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // DOC2PDF_CONFIG: config file name or path
	InputDir    string        // DOC2PDF_INPUT_DIR: default input directory
	OutputDir   string        // DOC2PDF_OUTPUT_DIR: default output directory
	Backends    string        // DOC2PDF_BACKENDS: comma-separated fallback order
	Timeout     time.Duration // DOC2PDF_TIMEOUT: per-file render timeout
	Concurrency int           // DOC2PDF_CONCURRENCY: files converted at once
	StampFormat string        // DOC2PDF_STAMP_FORMAT: header timestamp format
	ReportPath  string        // DOC2PDF_REPORT: JSON report destination
	Validate    bool          // DOC2PDF_VALIDATE: PDF validation gate
}

// knownEnvVars lists valid DOC2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOC2PDF_CONFIG":       true,
	"DOC2PDF_INPUT_DIR":    true,
	"DOC2PDF_OUTPUT_DIR":   true,
	"DOC2PDF_BACKENDS":     true,
	"DOC2PDF_TIMEOUT":      true,
	"DOC2PDF_CONCURRENCY":  true,
	"DOC2PDF_STAMP_FORMAT": true,
	"DOC2PDF_REPORT":       true,
	"DOC2PDF_VALIDATE":     true,
	"DOC2PDF_CONTAINER":    true, // consumed by doctor's container detection
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized DOC2PDF_* values.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("DOC2PDF_CONFIG"),
		InputDir:    getenv("DOC2PDF_INPUT_DIR"),
		OutputDir:   getenv("DOC2PDF_OUTPUT_DIR"),
		Backends:    getenv("DOC2PDF_BACKENDS"),
		StampFormat: getenv("DOC2PDF_STAMP_FORMAT"),
		ReportPath:  getenv("DOC2PDF_REPORT"),
	}

	if timeout := getenv("DOC2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if width := getenv("DOC2PDF_CONCURRENCY"); width != "" {
		if n, err := strconv.Atoi(width); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}

	if v := getenv("DOC2PDF_VALIDATE"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Validate = true
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOC2PDF_* variables.
// Helps catch typos like DOC2PDF_CONCURENCY instead of DOC2PDF_CONCURRENCY.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOC2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.StampFormat != "" && cfg.Output.TimestampFormat == "" {
		cfg.Output.TimestampFormat = env.StampFormat
	}

	if env.Backends != "" && len(cfg.Render.Backends) == 0 {
		for _, name := range strings.Split(env.Backends, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Render.Backends = append(cfg.Render.Backends, name)
			}
		}
	}
	if env.Timeout > 0 && cfg.Render.Timeout == "" {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.Validate && !cfg.Render.Validate {
		cfg.Render.Validate = true
	}

	if env.Concurrency > 0 && cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = env.Concurrency
	}

	if env.ReportPath != "" && cfg.Report.Path == "" {
		cfg.Report.Path = env.ReportPath
	}
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output.dir != "" {
		cfg.Output.DefaultDir = flags.output.dir
	}
	if flags.output.stamp != "" {
		cfg.Output.TimestampFormat = flags.output.stamp
	}
	if flags.output.report != "" {
		cfg.Report.Path = flags.output.report
	}

	if len(flags.render.backends) > 0 {
		cfg.Render.Backends = flags.render.backends
	}
	if flags.render.timeout != "" {
		cfg.Render.Timeout = flags.render.timeout
	}
	if flags.render.validate {
		cfg.Render.Validate = true
	}

	if flags.batch.concurrency > 0 {
		cfg.Batch.Concurrency = flags.batch.concurrency
	}
}
