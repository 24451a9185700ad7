package pipeline

import (
	"context"
	"fmt"

	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/text"
	"golang.org/x/sync/errgroup"
)

// parallelFor splits [0, n) into min(workers, n) contiguous chunks whose
// sizes differ by at most one, the first n%workers chunks taking the extra
// row, and runs fn(lo, hi) for each on its own goroutine. The first error, or a panic
// recovered from any chunk, cancels ctx for the others and is returned
// wrapped in ErrWorkerFailure.
func parallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return nil
	}

	if workers < 1 {
		workers = 1
	}

	if workers > n {
		workers = n
	}

	size, extra := n/workers, n%workers
	g, gctx := errgroup.WithContext(ctx)

	next := 0
	for i := range workers {
		lo, hi := next, next+size
		if i < extra {
			hi++
		}
		next = hi

		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: rows [%d,%d): panic: %v", ErrWorkerFailure, lo, hi, r)
				}
			}()

			if err := fn(gctx, lo, hi); err != nil {
				return fmt.Errorf("%w: rows [%d,%d): %w", ErrWorkerFailure, lo, hi, err)
			}

			return nil
		})
	}

	return g.Wait()
}

// CleanTable runs the processor over every row of t on workers goroutines.
// Each chunk writes into its own index range of a pre-sized slice, so output
// order equals input order.
func CleanTable(ctx context.Context, p *text.Processor, t *dataset.Table, workers int) (*dataset.Table, error) {
	rows := make([]dataset.Record, len(t.Rows))

	err := parallelFor(ctx, len(t.Rows), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = p.ProcessRecord(t.Rows[i], t.HasReport)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dataset.Table{Rows: rows, HasReport: t.HasReport, HasQID: t.HasQID}, nil
}
