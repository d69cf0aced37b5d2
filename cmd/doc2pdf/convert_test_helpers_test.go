package main

// Notes:
// - This file contains test helpers and fakes used across the convert tests.
// - fakeConverter records call order and peak parallelism so chunking
//   behavior can be asserted without real rendering.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	doc2pdf "github.com/mdresch/go-doc2pdf"
)

// ---------------------------------------------------------------------------
// Fake Converter - Records calls, no rendering
// ---------------------------------------------------------------------------

// fakeConverter implements Converter without touching a browser.
type fakeConverter struct {
	mu       sync.Mutex
	calls    []string // RelPath per call, in call order
	inFlight int
	maxSeen  int // peak concurrent calls observed

	delay    time.Duration
	failWith map[string]error // RelPath -> error to return
	skipWith map[string]bool  // RelPath -> report as skipped
	onCall   func()           // runs once per call, before any delay
}

func (c *fakeConverter) ConvertFile(_ context.Context, file doc2pdf.File, outputPath string) doc2pdf.FileResult {
	c.mu.Lock()
	c.calls = append(c.calls, file.RelPath)
	c.inFlight++
	if c.inFlight > c.maxSeen {
		c.maxSeen = c.inFlight
	}
	delay := c.delay
	hook := c.onCall
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	c.mu.Lock()
	c.inFlight--
	err := c.failWith[file.RelPath]
	skipped := c.skipWith[file.RelPath]
	c.mu.Unlock()

	res := doc2pdf.FileResult{
		Input:    file.RelPath,
		Output:   outputPath,
		Backend:  "chrome",
		Skipped:  skipped,
		Duration: delay,
		Err:      err,
	}
	if err != nil {
		res.Backend = ""
		res.Output = ""
	}
	return res
}

func (c *fakeConverter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// ---------------------------------------------------------------------------
// Fake Pool - Hands out the fake converter
// ---------------------------------------------------------------------------

// fakePool implements Pool around a single shared fakeConverter.
type fakePool struct {
	mu         sync.Mutex
	converter  Converter
	size       int
	acquireErr error
	returnNil  bool // simulate a closed pool: (nil, nil)
	acquires   int
	releases   int
	closed     bool
	closeErr   error
}

func (p *fakePool) Acquire() (Converter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquires++
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if p.returnNil {
		return nil, nil
	}
	return p.converter, nil
}

func (p *fakePool) Release(Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releases++
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeErr
}

// fakeFactory returns a poolFactory that hands out the given pool and
// records the requested size on it.
func fakeFactory(p *fakePool) poolFactory {
	return func(size int, _ ...doc2pdf.Option) Pool {
		p.mu.Lock()
		p.size = size
		p.mu.Unlock()
		return p
	}
}

// ---------------------------------------------------------------------------
// Environment and Filesystem Helpers
// ---------------------------------------------------------------------------

// testEnv builds an Environment writing to buffers, with env vars served
// from the given map.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(key string) string { return vars[key] },
		Args:   []string{"doc2pdf"},
	}
	return env, stdout, stderr
}

// writeInputTree creates a temp directory with the given files.
// Keys use forward slashes and are converted for the platform.
func writeInputTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// namedFiles builds File descriptors for batch driver tests.
func namedFiles(names ...string) []doc2pdf.File {
	files := make([]doc2pdf.File, len(names))
	for i, n := range names {
		files[i] = doc2pdf.File{
			AbsPath: "/in/" + n,
			RelPath: n,
			Name:    strings.TrimSuffix(n, filepath.Ext(n)),
			Ext:     filepath.Ext(n),
		}
	}
	return files
}
