package main

import (
	"context"
	"errors"
	"os"

	doc2pdf "github.com/mdresch/go-doc2pdf"
	"github.com/mdresch/go-doc2pdf/internal/config"
	"github.com/mdresch/go-doc2pdf/internal/dateutil"
	"github.com/mdresch/go-doc2pdf/internal/scan"
)

// Exit codes for the doc2pdf CLI.
// A run that completes reports per-file failures in the summary and still
// exits 0; non-zero codes are reserved for the run itself going wrong.
const (
	ExitSuccess     = 0 // Run completed, even with per-file failures
	ExitGeneral     = 1 // Fatal error (output dir, report write, unexpected)
	ExitUsage       = 2 // Invalid flags, config, or arguments
	ExitNoInput     = 3 // No convertible files discovered
	ExitInterrupted = 4 // SIGINT/SIGTERM before the run finished
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Signal-driven cancellation (exit 4)
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidConcurrency) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, doc2pdf.ErrUnknownBackend) ||
		errors.Is(err, doc2pdf.ErrDuplicateBackend) ||
		errors.Is(err, doc2pdf.ErrNoBackends) ||
		errors.Is(err, doc2pdf.ErrUnsupportedFormat) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidStampFormat) ||
		errors.Is(err, scan.ErrNotDirectory) {
		return ExitUsage
	}

	// Nothing to convert (exit 3)
	if errors.Is(err, ErrNoFilesFound) ||
		errors.Is(err, scan.ErrRootNotFound) ||
		errors.Is(err, os.ErrNotExist) {
		return ExitNoInput
	}

	return ExitGeneral
}
