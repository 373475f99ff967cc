package processing

import (
	"context"
	"log/slog"

	"procissue/internal/bootstrap/logging"
	"procissue/internal/errs"
)

// Resolve removes the fault class named by input and returns the raw events
// it blocked that no other fault class of the project still blocks. The
// result is ascending and free of duplicates.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) ([]uint64, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	ctx = serviceContext(ctx, "resolve", input.ProjectID, input.Identity)
	checksum := input.Identity.Checksum()

	var (
		affected  []uint64
		unblocked []uint64
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		linked, err := s.repo.ListLinkedRawEvents(txCtx, input.ProjectID, checksum)
		if err != nil {
			return errs.Wrap(err, "list linked raw events")
		}

		if _, err := s.repo.DeleteLinks(txCtx, input.ProjectID, checksum); err != nil {
			return errs.Wrap(err, "delete event links")
		}
		if _, err := s.repo.DeleteIssues(txCtx, input.ProjectID, checksum); err != nil {
			return errs.Wrap(err, "delete processing issues")
		}

		affected = linked
		if len(linked) == 0 {
			return nil
		}

		stillBlocked, err := s.repo.ListBlockedRawEvents(txCtx, input.ProjectID, linked)
		if err != nil {
			return errs.Wrap(err, "list still blocked raw events")
		}
		unblocked = difference(linked, stillBlocked)
		return nil
	}); err != nil {
		return nil, errs.Wrap(err, "resolve processing issue")
	}

	s.setCacheBestEffort(ctx, lastResolvedKey(input.ProjectID, checksum), s.timestamp())

	if unblocked == nil {
		unblocked = []uint64{}
	}
	logging.Info(
		ctx,
		"processing issue resolved",
		slog.String("checksum", checksum),
		slog.Int("affected_events", len(affected)),
		slog.Int("unblocked_events", len(unblocked)),
	)
	return unblocked, nil
}

// difference returns the distinct members of from that are not in minus,
// keeping the order of from.
func difference(from []uint64, minus []uint64) []uint64 {
	exclude := make(map[uint64]struct{}, len(minus)+len(from))
	for _, id := range minus {
		exclude[id] = struct{}{}
	}

	out := make([]uint64, 0, len(from))
	for _, id := range from {
		if _, skip := exclude[id]; skip {
			continue
		}
		exclude[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
