package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	doc2pdf "github.com/mdresch/go-doc2pdf"
)

// ErrServiceInit marks a conversion that never started because no service
// could be acquired from the pool.
var ErrServiceInit = errors.New("service unavailable")

// batchParams carries the run-wide settings into the batch driver.
type batchParams struct {
	outputRoot string
	width      int
	quiet      bool
	verbose    bool
	progress   *doc2pdf.Progress
}

// convertBatch converts files in contiguous chunks of params.width. Each
// chunk runs its files in parallel and the next chunk starts only after
// every file in the current one has finished. Results keep input order.
//
// Progress updates and per-file lines happen at chunk boundaries, where
// no goroutine is writing, so output never interleaves.
func convertBatch(ctx context.Context, pool Pool, files []doc2pdf.File, params *batchParams, env *Environment) []doc2pdf.FileResult {
	results := make([]doc2pdf.FileResult, len(files))

	for start := 0; start < len(files); start += params.width {
		if err := ctx.Err(); err != nil {
			// Cancelled between chunks: fail everything not yet started.
			for i := start; i < len(files); i++ {
				results[i] = doc2pdf.FileResult{Input: files[i].RelPath, Err: err}
			}
			reportChunk(results[start:], params, env)
			break
		}

		end := min(start+params.width, len(files))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = convertOne(ctx, pool, files[i], params.outputRoot)
			}()
		}
		wg.Wait()

		reportChunk(results[start:end], params, env)
	}

	return results
}

// convertOne acquires a service, converts one file, and releases the
// service back to the pool.
func convertOne(ctx context.Context, pool Pool, file doc2pdf.File, outputRoot string) doc2pdf.FileResult {
	svc, err := pool.Acquire()
	if err != nil {
		return doc2pdf.FileResult{
			Input: file.RelPath,
			Err:   fmt.Errorf("%w: %v", ErrServiceInit, err),
		}
	}
	if svc == nil {
		return doc2pdf.FileResult{
			Input: file.RelPath,
			Err:   fmt.Errorf("%w: pool closed", ErrServiceInit),
		}
	}
	defer pool.Release(svc)

	outputPath := doc2pdf.OutputPath(outputRoot, file)
	return svc.ConvertFile(ctx, file, outputPath)
}

// reportChunk records a finished chunk in the progress tracker and prints
// its per-file lines.
func reportChunk(chunk []doc2pdf.FileResult, params *batchParams, env *Environment) {
	for _, r := range chunk {
		params.progress.Update(r.Ok())
		printFileResult(r, params, env)
	}
}

// printFileResult writes one line per file. Failures always go to stderr;
// quiet suppresses the success lines only.
func printFileResult(r doc2pdf.FileResult, params *batchParams, env *Environment) {
	if r.Err != nil {
		fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Input, r.Err, hintFor(r.Err))
		return
	}
	if params.quiet {
		return
	}
	switch {
	case r.Skipped:
		fmt.Fprintf(env.Stdout, "Skipped %s (output exists)\n", r.Input)
	case params.verbose:
		fmt.Fprintf(env.Stdout, "%s -> %s (%v) [%s]\n",
			r.Input, r.Output, r.Duration.Round(time.Millisecond), r.Backend)
	default:
		fmt.Fprintf(env.Stdout, "Created %s\n", r.Output)
	}
}
