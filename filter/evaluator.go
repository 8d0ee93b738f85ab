package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/cfclient/confluence"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the maximum number of chunks evaluated at once
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the minimum chunk size. Shorter lists are
// evaluated on the calling goroutine.
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator splits large content lists into chunks and
// evaluates them in parallel
type ConcurrentEvaluator struct {
	workers   int
	batchSize int
}

var _ Evaluator = (*ConcurrentEvaluator)(nil)

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the matching content in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, contents []confluence.Content) ([]confluence.Content, error) {
	if len(contents) == 0 {
		return []confluence.Content{}, nil
	}
	if len(contents) < e.batchSize {
		return evaluateSequential(filter, contents), nil
	}

	chunkSize := max(len(contents)/e.workers, e.batchSize)
	chunks := make([][]confluence.Content, (len(contents)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range chunks {
		start := i * chunkSize
		chunk := contents[start:min(start+chunkSize, len(contents))]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = evaluateSequential(filter, chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	matches := make([]confluence.Content, 0, total)
	for _, c := range chunks {
		matches = append(matches, c...)
	}
	return matches, nil
}

func evaluateSequential(filter CompiledFilter, contents []confluence.Content) []confluence.Content {
	matches := make([]confluence.Content, 0, len(contents)/4)
	for _, c := range contents {
		if filter.Evaluate(c) {
			matches = append(matches, c)
		}
	}
	return matches
}
