package doc2pdf

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend identifies a PDF render backend.
type Backend int

// Supported backends, in the order they were added. The configured order,
// not this one, decides fallback priority.
const (
	BackendChrome Backend = iota
	BackendCloud
)

// String returns the backend name used in flags, logs and results.
func (b Backend) String() string {
	switch b {
	case BackendChrome:
		return "chrome"
	case BackendCloud:
		return "cloud"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend maps a backend name (case-insensitive, surrounding space
// ignored) to its Backend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome":
		return BackendChrome, nil
	case "cloud":
		return BackendCloud, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be chrome or cloud)", ErrUnknownBackend, name)
	}
}

// ParseBackends parses an ordered backend list; the order is the fallback
// order. At least one backend is required and duplicates are rejected.
func ParseBackends(names []string) ([]Backend, error) {
	if len(names) == 0 {
		return nil, ErrNoBackends
	}

	seen := make(map[Backend]bool, len(names))
	backends := make([]Backend, 0, len(names))
	for _, name := range names {
		b, err := ParseBackend(name)
		if err != nil {
			return nil, err
		}
		if seen[b] {
			return nil, fmt.Errorf("%w: %q listed twice", ErrDuplicateBackend, b)
		}
		seen[b] = true
		backends = append(backends, b)
	}
	return backends, nil
}

// FileResult records the outcome of one file conversion.
type FileResult struct {
	Input    string        // source path relative to the scan root
	Output   string        // destination PDF path
	Backend  string        // backend that produced the PDF, "" if none ran
	Title    string        // display title extracted from the rendered document
	Skipped  bool          // true when the output already existed
	Duration time.Duration // wall-clock time for this file
	Err      error         // nil on success
}

// Ok reports whether the file counts as a success. Skipped files count:
// the output exists, which is all the caller asked for.
func (r FileResult) Ok() bool {
	return r.Err == nil
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout     time.Duration
	stampFormat string
	backends    []Backend
	validate    bool
	logger      *slog.Logger
	now         func() time.Time
}

// defaultTimeout bounds a single render attempt when no timeout is given.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("doc2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithBackends sets the renderer fallback order. Default: chrome only.
func WithBackends(backends ...Backend) Option {
	return func(s *Service) {
		s.cfg.backends = backends
	}
}

// WithStampFormat sets the metadata header timestamp format. Accepts the
// token syntax of internal/dateutil ("YYYY-MM-DD HH:mm"); New reports an
// invalid format.
func WithStampFormat(format string) Option {
	return func(s *Service) {
		s.cfg.stampFormat = format
	}
}

// WithValidation enables a structural check of every rendered PDF before
// it is written. A PDF that fails the check counts as a backend failure.
func WithValidation() Option {
	return func(s *Service) {
		s.cfg.validate = true
	}
}

// WithLogger sets the logger for fallback notices and cleanup warnings.
// Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.cfg.logger = log
		}
	}
}

// WithClock overrides the time source for the metadata header. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.cfg.now = now
		}
	}
}
