package doc2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/mdresch/go-doc2pdf/internal/dateutil"
	"github.com/mdresch/go-doc2pdf/internal/fileutil"
	"github.com/mdresch/go-doc2pdf/internal/pipeline"
)

// renderer abstracts HTML to PDF rendering to allow different backends.
type renderer interface {
	Name() string
	Render(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// pdfPermissions applies to written PDFs.
const pdfPermissions = 0o644 // #nosec G306 -- PDFs are meant to be readable

// Service orchestrates the document-to-PDF pipeline for single files.
// One Service is safe for sequential use; for concurrent batches give each
// worker its own instance (see ServicePool).
type Service struct {
	cfg       serviceConfig
	markdown  *pipeline.MarkdownConverter
	text      *pipeline.TextConverter
	builder   *pipeline.DocumentBuilder
	renderers []renderer
}

// New creates a Service with default configuration: chrome backend only,
// 2 minute render timeout, "YYYY-MM-DD HH:mm" header stamps, no validation.
// Use options to customize behavior.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			timeout:     defaultTimeout,
			stampFormat: dateutil.DefaultStampFormat,
			backends:    []Backend{BackendChrome},
			logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
			now:         time.Now,
		},
		markdown: pipeline.NewMarkdownConverter(),
		text:     pipeline.NewTextConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if _, err := dateutil.ParseStampFormat(s.cfg.stampFormat); err != nil {
		return nil, err
	}

	if len(s.cfg.backends) == 0 {
		return nil, ErrNoBackends
	}
	seen := make(map[Backend]bool, len(s.cfg.backends))
	for _, b := range s.cfg.backends {
		if seen[b] {
			return nil, fmt.Errorf("%w: %q listed twice", ErrDuplicateBackend, b)
		}
		seen[b] = true
	}

	builder, err := pipeline.NewDocumentBuilder()
	if err != nil {
		return nil, err
	}
	s.builder = builder

	// Create renderers if not injected (e.g., by tests)
	if s.renderers == nil {
		s.renderers = make([]renderer, 0, len(s.cfg.backends))
		for _, b := range s.cfg.backends {
			s.renderers = append(s.renderers, newRenderer(b, s.cfg))
		}
	}

	return s, nil
}

// newRenderer constructs the production renderer for a backend.
// The switch is exhaustive over Backend values.
func newRenderer(b Backend, cfg serviceConfig) renderer {
	switch b {
	case BackendChrome:
		return newChromeRenderer(cfg.timeout, cfg.logger)
	case BackendCloud:
		return newCloudRenderer(cfg.logger)
	default:
		panic(fmt.Sprintf("doc2pdf: no renderer for backend %v", b))
	}
}

// ConvertFile converts one discovered file to a PDF at outputPath.
// An existing output is a success without touching a renderer: the work is
// already done. Every failure mode is captured in the returned FileResult;
// the per-file boundary is what keeps one bad document from failing a
// whole batch.
func (s *Service) ConvertFile(ctx context.Context, file File, outputPath string) (res FileResult) {
	start := time.Now()
	res = FileResult{Input: file.RelPath, Output: outputPath}
	defer func() { res.Duration = time.Since(start) }()

	if fileutil.FileExists(outputPath) {
		res.Skipped = true
		s.cfg.logger.Debug("output exists, skipping", "input", file.RelPath, "output", outputPath)
		return res
	}

	htmlDoc, err := s.buildDocument(ctx, file)
	if err != nil {
		res.Err = err
		return res
	}

	pdfBytes, backend, err := s.render(ctx, htmlDoc)
	if err != nil {
		res.Err = err
		return res
	}
	res.Backend = backend
	res.Title = pipeline.ExtractTitle(htmlDoc)

	if err := fileutil.WriteFileAtomic(outputPath, pdfBytes, pdfPermissions); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return res
	}

	return res
}

// buildDocument produces the final self-contained HTML for one file.
// Markdown and text flow through the shared page template; HTML input is
// returned byte-for-byte untouched.
func (s *Service) buildDocument(ctx context.Context, file File) (string, error) {
	raw, err := os.ReadFile(file.AbsPath) // #nosec G304 -- path comes from directory scan
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	format, err := DetectFormat(file.Ext)
	if err != nil {
		return "", err
	}

	var body string
	switch format {
	case FormatMarkdown:
		body, err = s.markdown.ToHTML(ctx, string(raw))
	case FormatText:
		body, err = s.text.ToHTML(ctx, string(raw))
	case FormatHTML:
		// Pre-formatted documents are trusted as-is: no template, no
		// stylesheet, no metadata header.
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	stamp, err := dateutil.FormatStamp(s.cfg.stampFormat, s.cfg.now())
	if err != nil {
		return "", err
	}

	htmlDoc, err := s.builder.BuildPage(ctx, pipeline.PageData{
		Title:       pipeline.DeriveTitle(file.Name),
		SourcePath:  file.RelPath,
		GeneratedAt: stamp,
		Body:        body,
	})
	if err != nil {
		return "", err
	}

	// Relative image and link references resolve against the source file's
	// directory, not wherever the renderer loads the document from.
	return pipeline.RewriteRelativePaths(htmlDoc, filepath.Dir(file.AbsPath))
}

// render tries each configured backend in order until one produces a PDF
// that survives the optional validation gate. Every failed attempt is
// logged and folded into the aggregate error so a total failure explains
// itself.
func (s *Service) render(ctx context.Context, htmlDoc string) ([]byte, string, error) {
	var attemptErrs []error
	for i, r := range s.renderers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		if i > 0 {
			s.cfg.logger.Info("falling back", "backend", r.Name())
		}

		rctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
		pdfBytes, err := r.Render(rctx, htmlDoc)
		cancel()

		if err == nil && s.cfg.validate {
			err = validatePDF(pdfBytes)
		}
		if err != nil {
			s.cfg.logger.Warn("render failed", "backend", r.Name(), "error", err)
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		return pdfBytes, r.Name(), nil
	}

	return nil, "", fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(attemptErrs...))
}

// validatePDF runs a structural pdfcpu check over rendered bytes. A
// truncated or corrupt document caught here becomes a backend failure,
// which keeps the fallback chain alive.
func validatePDF(pdfBytes []byte) error {
	if err := api.Validate(bytes.NewReader(pdfBytes), nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFInvalid, err)
	}
	return nil
}

// Close releases renderer resources. Browsers are torn down per render
// call; this mainly drops the cloud backend's idle connections.
func (s *Service) Close() error {
	var errs []error
	for _, r := range s.renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// OutputPath maps a discovered file to its destination under outputRoot:
// the relative path with the source extension replaced by ".pdf".
func OutputPath(outputRoot string, file File) string {
	rel := strings.TrimSuffix(file.RelPath, filepath.Ext(file.RelPath)) + ".pdf"
	return filepath.Join(outputRoot, rel)
}
