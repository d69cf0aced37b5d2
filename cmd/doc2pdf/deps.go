package main

import (
	"context"

	doc2pdf "github.com/mdresch/go-doc2pdf"
)

// Converter is the slice of the conversion service the batch driver needs.
type Converter interface {
	ConvertFile(ctx context.Context, file doc2pdf.File, outputPath string) doc2pdf.FileResult
}

// Compile-time interface implementation check.
var _ Converter = (*doc2pdf.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// poolFactory builds a pool once flags, env vars, and config have been
// merged into concrete service options.
type poolFactory func(size int, opts ...doc2pdf.Option) Pool

// servicePool adapts doc2pdf.ServicePool to the Pool interface.
type servicePool struct {
	pool *doc2pdf.ServicePool
}

// newServicePool is the production poolFactory.
func newServicePool(size int, opts ...doc2pdf.Option) Pool {
	return &servicePool{pool: doc2pdf.NewServicePool(size, opts...)}
}

func (p *servicePool) Acquire() (Converter, error) {
	svc, err := p.pool.Acquire()
	if svc == nil {
		// A typed nil inside a non-nil interface would defeat the caller's
		// nil check, so convert explicitly.
		return nil, err
	}
	return svc, err
}

func (p *servicePool) Release(c Converter) {
	if svc, ok := c.(*doc2pdf.Service); ok {
		p.pool.Release(svc)
	}
}

func (p *servicePool) Size() int { return p.pool.Size() }

func (p *servicePool) Close() error { return p.pool.Close() }
