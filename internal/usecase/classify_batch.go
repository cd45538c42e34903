package usecase

import (
	"context"
	"errors"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
	"golang.org/x/sync/errgroup"
)

type ClassifyBatch struct {
	classifier ports.Classifier
	workers    int
}

// NewClassifyBatch builds a batch classifier running at most workers
// classifications at a time (minimum 1).
func NewClassifyBatch(cl ports.Classifier, workers int) *ClassifyBatch {
	if workers < 1 {
		workers = 1
	}
	return &ClassifyBatch{classifier: cl, workers: workers}
}

// Execute classifies items concurrently. Results keep input order. A failed
// item is recorded on its result; only cancellation aborts the batch.
func (uc *ClassifyBatch) Execute(ctx context.Context, items []domain.BatchItem) ([]domain.BatchResult, error) {
	results := make([]domain.BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := domain.BatchResult{ID: it.ID, Request: it.Request}

			c, err := uc.classifier.Classify(gctx, it.Request)
			switch {
			case err == nil:
				res.Classification = &c
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
