package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	doc2pdf "github.com/mdresch/go-doc2pdf"
	"github.com/mdresch/go-doc2pdf/internal/config"
	"github.com/mdresch/go-doc2pdf/internal/dateutil"
	"github.com/mdresch/go-doc2pdf/internal/hints"
)

// Sentinel errors for the convert command.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoFilesFound       = errors.New("no convertible files found")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidConcurrency = errors.New("invalid concurrency")
)

const (
	// defaultConcurrency is the chunk width when neither flag, env var,
	// nor config sets one.
	defaultConcurrency = 4

	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: world-readable reports
)

// runConvertCmd parses flags, wires logging and signal handling, and runs
// the conversion. Returns the process exit code.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			// pflag printed the usage via fs.Usage.
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		fmt.Fprintln(env.Stderr, "Run 'doc2pdf help convert' for usage.")
		return ExitUsage
	}

	// GOMAXPROCS respects container CPU quotas. Failure only means the
	// env var was invalid, in which case runtime defaults apply.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, newServicePool, env, logger); err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger builds the run logger on w. Verbose lowers the level to Debug,
// quiet raises it to Error.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runConvert orchestrates a batch conversion run. Per-file failures are
// reported in the summary and do not produce an error; only run-level
// problems (bad flags, unreadable config, interruption) do.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, newPool poolFactory, env *Environment, logger *slog.Logger) error {
	if flags.batch.concurrency < 0 || flags.batch.concurrency > config.MaxConcurrency {
		return fmt.Errorf("%w: %d (must be between 1 and %d, 0 = default)",
			ErrInvalidConcurrency, flags.batch.concurrency, config.MaxConcurrency)
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr)

	// Load configuration: flag > env var > defaults.
	cfg := config.DefaultConfig()
	configPath := flags.common.config
	if configPath == "" {
		configPath = envCfg.ConfigPath
	}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	// Env vars bypass both the flag check above and the config file's
	// own validation, so bound the merged value here.
	if cfg.Batch.Concurrency > config.MaxConcurrency {
		return fmt.Errorf("%w: %d (must be between 1 and %d, 0 = default)",
			ErrInvalidConcurrency, cfg.Batch.Concurrency, config.MaxConcurrency)
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	files, singleFileInput, err := discoverInputs(inputPath, logger)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFilesFound, inputPath)
	}

	outputRoot := resolveOutputRoot(cfg, inputPath, singleFileInput)
	if err := os.MkdirAll(outputRoot, dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	backends, err := resolveBackends(cfg)
	if err != nil {
		return err
	}
	opts, err := buildServiceOptions(cfg, backends, logger)
	if err != nil {
		return err
	}
	width := resolveConcurrency(cfg)

	pool := newPool(width, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("service shutdown failed", "error", err)
		}
	}()

	progress := doc2pdf.NewProgress(len(files))
	params := &batchParams{
		outputRoot: outputRoot,
		width:      width,
		quiet:      flags.common.quiet,
		verbose:    flags.common.verbose,
		progress:   progress,
	}

	logger.Debug("starting batch",
		"files", len(files), "width", width, "output", outputRoot)

	results := convertBatch(ctx, pool, files, params, env)

	printSummary(env.Stdout, progress.Snapshot(), results, flags.common.quiet)

	// The report is written even on interruption: partial results still
	// tell CI which files made it.
	if cfg.Report.Path != "" {
		report := buildReport(env.Now(), inputPath, outputRoot, backends, progress.Snapshot(), results)
		if err := writeReport(cfg.Report.Path, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Debug("report written", "path", cfg.Report.Path)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", fmt.Errorf("%w: pass an input path or set input.defaultDir", ErrNoInput)
}

// resolveOutputRoot determines the output directory. Without an explicit
// destination, PDFs land next to their sources.
func resolveOutputRoot(cfg *config.Config, inputPath string, singleFileInput bool) string {
	if cfg.Output.DefaultDir != "" {
		return cfg.Output.DefaultDir
	}
	if singleFileInput {
		return filepath.Dir(inputPath)
	}
	return inputPath
}

// discoverInputs lists the files to convert. A directory is scanned
// recursively; a single file is accepted directly when its extension is
// supported. The bool reports single-file mode.
func discoverInputs(inputPath string, logger *slog.Logger) ([]doc2pdf.File, bool, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		f, err := singleFile(inputPath)
		if err != nil {
			return nil, true, err
		}
		return []doc2pdf.File{f}, true, nil
	}

	files, err := doc2pdf.Discover(inputPath, logger)
	return files, false, err
}

// singleFile builds the descriptor for a directly named input file.
func singleFile(path string) (doc2pdf.File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, err := doc2pdf.DetectFormat(ext); err != nil {
		return doc2pdf.File{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return doc2pdf.File{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	base := filepath.Base(path)
	return doc2pdf.File{
		AbsPath: abs,
		RelPath: base,
		Name:    strings.TrimSuffix(base, filepath.Ext(base)),
		Ext:     ext,
	}, nil
}

// buildServiceOptions translates merged config into service options.
func buildServiceOptions(cfg *config.Config, backends []doc2pdf.Backend, logger *slog.Logger) ([]doc2pdf.Option, error) {
	opts := []doc2pdf.Option{
		doc2pdf.WithBackends(backends...),
		doc2pdf.WithLogger(logger),
	}

	timeout, err := resolveTimeout(cfg)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, doc2pdf.WithTimeout(timeout))
	}

	stamp, err := resolveStampFormat(cfg)
	if err != nil {
		return nil, err
	}
	if stamp != "" {
		opts = append(opts, doc2pdf.WithStampFormat(stamp))
	}

	if cfg.Render.Validate {
		opts = append(opts, doc2pdf.WithValidation())
	}

	return opts, nil
}

// resolveBackends parses the merged backend order; chrome is the default.
func resolveBackends(cfg *config.Config) ([]doc2pdf.Backend, error) {
	names := cfg.Render.Backends
	if len(names) == 0 {
		names = []string{"chrome"}
	}
	return doc2pdf.ParseBackends(names)
}

// resolveTimeout parses the merged timeout; zero means the service default.
func resolveTimeout(cfg *config.Config) (time.Duration, error) {
	if cfg.Render.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.Render.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, cfg.Render.Timeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, cfg.Render.Timeout)
	}
	return d, nil
}

// resolveStampFormat expands preset names (iso, european, us, long) and
// validates explicit formats; empty means the service default.
func resolveStampFormat(cfg *config.Config) (string, error) {
	format := cfg.Output.TimestampFormat
	if format == "" {
		return "", nil
	}
	if preset, ok := dateutil.StampPresets[strings.ToLower(format)]; ok {
		return preset, nil
	}
	if _, err := dateutil.ParseStampFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// resolveConcurrency returns the merged chunk width.
func resolveConcurrency(cfg *config.Config) int {
	if cfg.Batch.Concurrency > 0 {
		return cfg.Batch.Concurrency
	}
	return defaultConcurrency
}

// printSummary writes the end-of-run summary with failed-file details, so
// failures do not have to be scraped out of the scrolling log.
func printSummary(w io.Writer, summary doc2pdf.Summary, results []doc2pdf.FileResult, quiet bool) {
	if quiet || summary.Total <= 1 {
		return
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed in %s (%.1f%% success)\n",
		summary.Completed, summary.Failed,
		summary.Elapsed.Round(100*time.Millisecond), summary.SuccessRate)

	if summary.Failed == 0 {
		return
	}
	fmt.Fprintln(w, "\nFailed files:")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "  %s: %v\n", r.Input, r.Err)
		}
	}
}

// hintFor returns an actionable hint line for known failure classes, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, doc2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, doc2pdf.ErrCloudCredentials):
		return hints.ForCloudCredentials()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrNoFilesFound):
		return hints.ForNoInput(doc2pdf.SupportedExtensionList())
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
