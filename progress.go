package doc2pdf

import (
	"math"
	"sync"
	"time"
)

// Progress tracks batch conversion counters. Safe for concurrent use:
// files in a chunk finish on different goroutines.
type Progress struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	started   time.Time
}

// Summary is a point-in-time snapshot of batch progress.
type Summary struct {
	Total       int
	Completed   int
	Failed      int
	SuccessRate float64 // percent of total, one decimal (60.0)
	Elapsed     time.Duration
}

// NewProgress creates a Progress for a batch of total files and starts
// the clock.
func NewProgress(total int) *Progress {
	return &Progress{total: total, started: time.Now()}
}

// Update records one finished file.
func (p *Progress) Update(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if success {
		p.completed++
	} else {
		p.failed++
	}
}

// Snapshot returns the current counters. SuccessRate is completed over
// total as a percentage rounded to one decimal; an empty batch reports 0.
func (p *Progress) Snapshot() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rate float64
	if p.total > 0 {
		rate = math.Round(float64(p.completed)/float64(p.total)*1000) / 10
	}

	return Summary{
		Total:       p.total,
		Completed:   p.completed,
		Failed:      p.failed,
		SuccessRate: rate,
		Elapsed:     time.Since(p.started),
	}
}
