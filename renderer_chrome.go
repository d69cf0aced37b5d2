package doc2pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mdresch/go-doc2pdf/internal/fileutil"
	"github.com/mdresch/go-doc2pdf/internal/hints"
	"github.com/mdresch/go-doc2pdf/internal/process"
)

// PDF page dimensions in inches (ISO A4 format).
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// Compile-time interface check
var _ renderer = (*chromeRenderer)(nil)

// chromeRenderer renders HTML to PDF with headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
//
// Every Render call launches its own browser process and tears it down
// before returning. Launching costs around a second, but the number of
// live Chrome processes can never exceed the number of in-flight renders,
// and a crashed render cannot poison later ones.
type chromeRenderer struct {
	timeout time.Duration
	logger  *slog.Logger
}

// newChromeRenderer creates a chromeRenderer with the given render timeout.
func newChromeRenderer(timeout time.Duration, logger *slog.Logger) *chromeRenderer {
	return &chromeRenderer{timeout: timeout, logger: logger}
}

// Name returns the backend name used in logs and fallback errors.
func (r *chromeRenderer) Name() string {
	return BackendChrome.String()
}

// Close is a no-op: browsers are per-call, nothing is held between calls.
func (r *chromeRenderer) Close() error {
	return nil
}

// Render writes htmlContent to a temp file, prints it to PDF in a fresh
// headless Chrome, and returns the PDF bytes.
func (r *chromeRenderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	// Check context before paying the launch cost
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			r.logger.Warn("temp file cleanup failed", "path", tmpPath, "error", err)
		}
	}()

	l := newLauncher()
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.teardown(nil, l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	defer r.teardown(browser, l)

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// teardown reverses a launch: graceful browser close, then a hard kill of
// the whole process group, then launcher temp-dir cleanup. Chrome leaves
// helper processes behind on ungraceful exits, so the group kill is not
// optional. A nil browser means Connect never succeeded.
func (r *chromeRenderer) teardown(browser *rod.Browser, l *launcher.Launcher) {
	if browser != nil {
		if err := browser.Close(); err != nil {
			r.logger.Warn("browser close failed", "error", err)
		}
	}
	process.KillProcessGroup(l.PID())
	l.Kill()
	l.Cleanup()
}

// newLauncher configures a headless launcher. ROD_BROWSER_BIN points rod
// at a pre-installed Chrome; the sandbox is disabled in CI and containers
// where Chrome's user namespaces are unavailable.
func newLauncher() *launcher.Launcher {
	l := launcher.New()

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || hints.IsInContainer() {
		l = l.NoSandbox(true)
	}

	return l
}

// printOptions builds the fixed print settings: A4 paper, uniform margins,
// background graphics on so code blocks keep their fill.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
