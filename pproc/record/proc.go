// Package record converts a stream of records in parallel. Records are
// delimited by a bufio.SplitFunc, e.g. lines or XML elements.
package record

import (
	"bufio"
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBufferSize   = 1 << 16
	defaultMaxTokenSize = 1 << 26 // 64MB, larger than any publisher document seen so far
)

// ProcessFunc transforms a single record. A nil result writes nothing.
type ProcessFunc func([]byte) ([]byte, error)

// ErrSkip can be returned (or wrapped) by a ProcessFunc to drop a record
// without stopping the processor.
var ErrSkip = errors.New("skip record")

// ProcessorOption allows configuration of the Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.numWorkers = n
		}
	}
}

// WithMaxTokenSize sets the maximum size of a single record.
func WithMaxTokenSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxTokenSize = size
		}
	}
}

// WithSplitFunc sets the record delimiter, lines by default.
func WithSplitFunc(f bufio.SplitFunc) ProcessorOption {
	return func(p *Processor) {
		p.splitFunc = f
	}
}

// WithTag splits the input on XML elements with the given name.
func WithTag(name string) ProcessorOption {
	return WithSplitFunc(TagSplitter(name))
}

// Stats counts records seen by a processor.
type Stats struct {
	Records int64
	Skipped int64
	Written int64
}

// Processor handles parallel processing of records. Output order is not
// guaranteed to follow input order.
type Processor struct {
	splitFunc    bufio.SplitFunc
	processFunc  ProcessFunc
	numWorkers   int
	maxTokenSize int

	records, skipped, written atomic.Int64
}

// NewProcessor creates a new Processor that by default splits on lines.
func NewProcessor(processFunc ProcessFunc, opts ...ProcessorOption) *Processor {
	p := &Processor{
		splitFunc:    bufio.ScanLines,
		processFunc:  processFunc,
		numWorkers:   runtime.NumCPU(),
		maxTokenSize: defaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats returns the current counts.
func (p *Processor) Stats() Stats {
	return Stats{
		Records: p.records.Load(),
		Skipped: p.skipped.Load(),
		Written: p.written.Load(),
	}
}

// Process reads records from r, processes them in parallel and writes the
// results to w. The first error, other than ErrSkip, stops processing.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	scanner.Split(p.splitFunc)
	scanner.Buffer(make([]byte, 0, min(defaultBufferSize, p.maxTokenSize)), p.maxTokenSize)
	var (
		queue   = make(chan []byte, p.numWorkers*2)
		writeMu sync.Mutex
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for scanner.Scan() {
			data := make([]byte, len(scanner.Bytes()))
			copy(data, scanner.Bytes())
			select {
			case queue <- data:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})
	for i := 0; i < p.numWorkers; i++ {
		g.Go(func() error {
			for data := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				p.records.Add(1)
				result, err := p.processFunc(data)
				switch {
				case errors.Is(err, ErrSkip):
					p.skipped.Add(1)
					continue
				case err != nil:
					return err
				case result == nil:
					continue
				}
				writeMu.Lock()
				_, err = bw.Write(result)
				writeMu.Unlock()
				if err != nil {
					return err
				}
				p.written.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return bw.Flush()
}
