package processing

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"procissue/internal/bootstrap/logging"
	"procissue/internal/errs"
)

const defaultBatchWorkers = 4

type RecordBatchResult struct {
	Recorded      int
	IssuesCreated int
	LinksCreated  int
}

// RecordBatch records inputs with at most workers concurrent calls to Record.
// The first failure cancels the remaining work and is returned.
func (s *Service) RecordBatch(ctx context.Context, inputs []RecordInput, workers int) (RecordBatchResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return RecordBatchResult{}, err
	}
	if workers <= 0 {
		workers = defaultBatchWorkers
	}

	results := make([]RecordResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		g.Go(func() error {
			res, err := s.Record(gctx, input)
			if err != nil {
				return fmt.Errorf("record #%d (raw event %d): %w", i, input.RawEventID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RecordBatchResult{}, errs.Wrap(err, "record batch")
	}

	summary := RecordBatchResult{Recorded: len(inputs)}
	for _, res := range results {
		if res.IssueCreated {
			summary.IssuesCreated++
		}
		if res.LinkCreated {
			summary.LinksCreated++
		}
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.processing")),
		"processing issue batch recorded",
		slog.Int("recorded", summary.Recorded),
		slog.Int("issues_created", summary.IssuesCreated),
		slog.Int("links_created", summary.LinksCreated),
		slog.Int("workers", workers),
	)
	return summary, nil
}
