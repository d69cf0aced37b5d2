package main

import (
	"encoding/json"
	"fmt"
	"time"

	doc2pdf "github.com/mdresch/go-doc2pdf"
	"github.com/mdresch/go-doc2pdf/internal/fileutil"
)

// runReport is the machine-readable record of a batch run, written as JSON
// when --report is set. CI pipelines diff these between runs.
type runReport struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	InputRoot   string            `json:"inputRoot"`
	OutputRoot  string            `json:"outputRoot"`
	Backends    []string          `json:"backends"`
	Summary     reportSummary     `json:"summary"`
	Files       []reportFileEntry `json:"files"`
}

type reportSummary struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"successRate"`
	ElapsedMS   int64   `json:"elapsedMs"`
}

type reportFileEntry struct {
	Input      string `json:"input"`
	Output     string `json:"output,omitempty"`
	Status     string `json:"status"`
	Backend    string `json:"backend,omitempty"`
	Title      string `json:"title,omitempty"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// buildReport assembles the report from the run outcome.
func buildReport(now time.Time, inputRoot, outputRoot string, backends []doc2pdf.Backend, summary doc2pdf.Summary, results []doc2pdf.FileResult) *runReport {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.String()
	}

	entries := make([]reportFileEntry, len(results))
	for i, r := range results {
		entry := reportFileEntry{
			Input:      r.Input,
			Output:     r.Output,
			Status:     fileStatus(r),
			Backend:    r.Backend,
			Title:      r.Title,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			entry.Output = "" // nothing was produced
		}
		entries[i] = entry
	}

	return &runReport{
		GeneratedAt: now,
		InputRoot:   inputRoot,
		OutputRoot:  outputRoot,
		Backends:    names,
		Summary: reportSummary{
			Total:       summary.Total,
			Completed:   summary.Completed,
			Failed:      summary.Failed,
			SuccessRate: summary.SuccessRate,
			ElapsedMS:   summary.Elapsed.Milliseconds(),
		},
		Files: entries,
	}
}

func fileStatus(r doc2pdf.FileResult) string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Skipped:
		return "skipped"
	default:
		return "converted"
	}
}

// writeReport marshals and atomically writes the report so a crash mid-write
// never leaves a truncated JSON file behind.
func writeReport(path string, report *runReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteFileAtomic(path, data, filePermissions)
}
