// Package doc2pdf converts markdown, plain-text and HTML documents to PDF.
//
// # Quick Start
//
// Discover convertible files under a directory, convert each one, close
// when done:
//
//	svc, err := doc2pdf.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	files, err := doc2pdf.Discover("./docs", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range files {
//	    res := svc.ConvertFile(ctx, f, doc2pdf.OutputPath("./pdf", f))
//	    if res.Err != nil {
//	        log.Printf("FAILED %s: %v", res.Input, res.Err)
//	    }
//	}
//
// ConvertFile never returns an error directly: every outcome, including
// failure, is a FileResult. A file whose output already exists is skipped
// and counts as a success.
//
// # Conversion Pipeline
//
// Each file flows through these stages:
//
//  1. Format detection from the file extension (markdown, text, HTML)
//  2. Body conversion - Goldmark (GFM, syntax highlighting) for markdown,
//     paragraph wrapping for plain text; HTML passes through untouched
//  3. Page templating - fixed stylesheet, derived title, source path and
//     generation timestamp (skipped for HTML passthrough)
//  4. PDF rendering - configured backends tried in order until one works
//  5. Atomic write - temp file and rename, so no partial PDFs survive
//
// # Backends
//
// Two render backends exist. Headless Chrome (go-rod) launches a browser
// process per render. The cloud backend submits the document to a hosted
// conversion service and needs PDF_SERVICES_CLIENT_ID and
// PDF_SERVICES_CLIENT_SECRET in the environment. Order them with
// WithBackends; each file falls back to the next backend when one fails:
//
//	svc, err := doc2pdf.New(
//	    doc2pdf.WithBackends(doc2pdf.BackendChrome, doc2pdf.BackendCloud),
//	    doc2pdf.WithTimeout(90*time.Second),
//	    doc2pdf.WithValidation(),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ServicePool to give each worker its own
// Service:
//
//	pool := doc2pdf.NewServicePool(4)
//	defer pool.Close()
//
//	svc, err := pool.Acquire()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Release(svc)
//	res := svc.ConvertFile(ctx, file, outputPath)
//
// Progress tracks counters across workers and is safe for concurrent
// updates.
//
// # Browser Requirements
//
// The chrome backend requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package doc2pdf
