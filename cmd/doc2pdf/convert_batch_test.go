package main

// Notes:
// - convertBatch: we test chunk boundaries (contiguous groups, next chunk
//   waits for the previous one), peak parallelism, result ordering,
//   cancellation between chunks, and pool failure paths.
// - printFileResult: we test each output shape via direct calls.
// - Peak parallelism uses a gauge inside fakeConverter, not timing, so the
//   assertions are deterministic.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	doc2pdf "github.com/mdresch/go-doc2pdf"
)

// ---------------------------------------------------------------------------
// TestConvertBatch_Chunking - Contiguous chunks, bounded parallelism
// ---------------------------------------------------------------------------

func TestConvertBatch_Chunking(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{delay: 10 * time.Millisecond}
	pool := &fakePool{converter: conv}
	files := namedFiles("a.md", "b.md", "c.md", "d.md", "e.md")
	env, stdout, _ := testEnv(nil)
	params := &batchParams{
		outputRoot: t.TempDir(),
		width:      2,
		progress:   doc2pdf.NewProgress(len(files)),
	}

	results := convertBatch(context.Background(), pool, files, params, env)

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}

	// Results keep input order regardless of completion order.
	for i, f := range files {
		if results[i].Input != f.RelPath {
			t.Errorf("results[%d].Input = %q, want %q", i, results[i].Input, f.RelPath)
		}
	}

	// Never more than width files in flight.
	if conv.maxSeen > 2 {
		t.Errorf("peak parallelism = %d, want <= 2", conv.maxSeen)
	}

	// Chunks are contiguous: {a,b}, {c,d}, {e}. Order within a chunk is
	// scheduler-dependent, so compare sorted windows.
	assertChunk(t, conv.calls[0:2], "a.md", "b.md")
	assertChunk(t, conv.calls[2:4], "c.md", "d.md")
	if conv.calls[4] != "e.md" {
		t.Errorf("last call = %q, want e.md", conv.calls[4])
	}

	// One Created line per file.
	if got := strings.Count(stdout.String(), "Created "); got != len(files) {
		t.Errorf("got %d Created lines, want %d", got, len(files))
	}

	// Progress saw every file.
	summary := params.progress.Snapshot()
	if summary.Completed != len(files) || summary.Failed != 0 {
		t.Errorf("progress = %d completed, %d failed; want %d, 0",
			summary.Completed, summary.Failed, len(files))
	}
}

func assertChunk(t *testing.T, got []string, want ...string) {
	t.Helper()
	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	sort.Strings(want)
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("chunk = %v, want %v (any order)", got, want)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch_WidthOne - Sequential order is exact
// ---------------------------------------------------------------------------

func TestConvertBatch_WidthOne(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{}
	pool := &fakePool{converter: conv}
	files := namedFiles("a.md", "b.md", "c.md")
	env, _, _ := testEnv(nil)
	params := &batchParams{
		outputRoot: t.TempDir(),
		width:      1,
		progress:   doc2pdf.NewProgress(len(files)),
	}

	convertBatch(context.Background(), pool, files, params, env)

	want := []string{"a.md", "b.md", "c.md"}
	for i, name := range want {
		if conv.calls[i] != name {
			t.Fatalf("calls = %v, want %v", conv.calls, want)
		}
	}

	if pool.releases != len(files) {
		t.Errorf("releases = %d, want %d", pool.releases, len(files))
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch_Cancellation - Remaining files fail fast
// ---------------------------------------------------------------------------

func TestConvertBatch_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	conv := &fakeConverter{onCall: cancel} // cancel during the first chunk
	pool := &fakePool{converter: conv}
	files := namedFiles("a.md", "b.md", "c.md")
	env, _, stderr := testEnv(nil)
	params := &batchParams{
		outputRoot: t.TempDir(),
		width:      1,
		progress:   doc2pdf.NewProgress(len(files)),
	}

	results := convertBatch(ctx, pool, files, params, env)

	if conv.callCount() != 1 {
		t.Fatalf("converter ran %d times, want 1", conv.callCount())
	}
	if results[0].Err != nil {
		t.Errorf("first file should have finished, got %v", results[0].Err)
	}
	for i := 1; i < len(results); i++ {
		if !errors.Is(results[i].Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, results[i].Err)
		}
		if results[i].Input != files[i].RelPath {
			t.Errorf("results[%d].Input = %q, want %q", i, results[i].Input, files[i].RelPath)
		}
	}

	// Cancelled files still get FAILED lines.
	if got := strings.Count(stderr.String(), "FAILED "); got != 2 {
		t.Errorf("got %d FAILED lines, want 2\nstderr: %s", got, stderr.String())
	}

	summary := params.progress.Snapshot()
	if summary.Completed != 1 || summary.Failed != 2 {
		t.Errorf("progress = %d completed, %d failed; want 1, 2",
			summary.Completed, summary.Failed)
	}
}

// ---------------------------------------------------------------------------
// TestConvertOne_PoolFailures - Acquire errors and closed pools
// ---------------------------------------------------------------------------

func TestConvertOne_PoolFailures(t *testing.T) {
	t.Parallel()

	t.Run("acquire error wraps ErrServiceInit", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{acquireErr: errors.New("browser exploded")}
		file := namedFiles("a.md")[0]

		res := convertOne(context.Background(), pool, file, t.TempDir())

		if !errors.Is(res.Err, ErrServiceInit) {
			t.Fatalf("err = %v, want ErrServiceInit", res.Err)
		}
		if !strings.Contains(res.Err.Error(), "browser exploded") {
			t.Errorf("err = %v, should carry the acquire failure", res.Err)
		}
		if res.Input != "a.md" {
			t.Errorf("Input = %q, want a.md", res.Input)
		}
	})

	t.Run("nil service means pool closed", func(t *testing.T) {
		t.Parallel()

		pool := &fakePool{returnNil: true}
		file := namedFiles("a.md")[0]

		res := convertOne(context.Background(), pool, file, t.TempDir())

		if !errors.Is(res.Err, ErrServiceInit) {
			t.Fatalf("err = %v, want ErrServiceInit", res.Err)
		}
		if !strings.Contains(res.Err.Error(), "pool closed") {
			t.Errorf("err = %v, want pool closed detail", res.Err)
		}
	})

	t.Run("release happens after success", func(t *testing.T) {
		t.Parallel()

		conv := &fakeConverter{}
		pool := &fakePool{converter: conv}
		file := namedFiles("a.md")[0]

		res := convertOne(context.Background(), pool, file, t.TempDir())

		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if pool.releases != 1 {
			t.Errorf("releases = %d, want 1", pool.releases)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintFileResult - Per-file output lines
// ---------------------------------------------------------------------------

func TestPrintFileResult(t *testing.T) {
	t.Parallel()

	okResult := doc2pdf.FileResult{
		Input:    "doc.md",
		Output:   "/out/doc.pdf",
		Backend:  "chrome",
		Duration: 1234 * time.Millisecond,
	}

	tests := []struct {
		name       string
		result     doc2pdf.FileResult
		quiet      bool
		verbose    bool
		wantStdout string
		wantStderr string
	}{
		{
			name:       "created line",
			result:     okResult,
			wantStdout: "Created /out/doc.pdf\n",
		},
		{
			name:       "verbose line includes timing and backend",
			result:     okResult,
			verbose:    true,
			wantStdout: "doc.md -> /out/doc.pdf (1.234s) [chrome]\n",
		},
		{
			name:   "quiet suppresses success",
			result: okResult,
			quiet:  true,
		},
		{
			name:       "skipped line",
			result:     doc2pdf.FileResult{Input: "doc.md", Output: "/out/doc.pdf", Skipped: true},
			wantStdout: "Skipped doc.md (output exists)\n",
		},
		{
			name:       "failure goes to stderr",
			result:     doc2pdf.FileResult{Input: "doc.md", Err: errors.New("render broke")},
			wantStderr: "FAILED doc.md: render broke\n",
		},
		{
			name:       "failure prints even in quiet mode",
			result:     doc2pdf.FileResult{Input: "doc.md", Err: errors.New("render broke")},
			quiet:      true,
			wantStderr: "FAILED doc.md: render broke\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			params := &batchParams{quiet: tt.quiet, verbose: tt.verbose}

			printFileResult(tt.result, params, env)

			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if stderr.String() != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
