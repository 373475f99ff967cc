package processing

import (
	"context"
	"log/slog"

	"procissue/internal/bootstrap/logging"
	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	"procissue/internal/ports"
)

// Record registers one fault occurrence for a raw event. The fault class and
// the link are created if absent; an existing fault class keeps its first
// payload. Repeated calls with the same identity are no-ops.
func (s *Service) Record(ctx context.Context, input RecordInput) (RecordResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return RecordResult{}, err
	}

	ctx = serviceContext(ctx, "record", input.ProjectID, input.Identity)
	if s.taxonomy != nil && !s.taxonomy.IsKnown(input.Identity.Type) {
		logging.Warn(ctx, "recording fault type outside taxonomy", slog.String("type", input.Identity.Type.String()))
	}

	checksum := input.Identity.Checksum()
	payload := domain.NewPayload(input.Identity, input.Diagnostics)
	result := RecordResult{Checksum: checksum}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, created, err := s.repo.GetOrCreateIssue(txCtx, ports.ProcessingIssueCreate{
			ProjectID: input.ProjectID,
			Checksum:  checksum,
			Payload:   payload,
			CreatedAt: s.timestamp(),
		})
		if err != nil {
			return errs.Wrap(err, "get or create processing issue")
		}

		linked, err := s.repo.GetOrCreateLink(txCtx, input.RawEventID, issue.IssueID)
		if err != nil {
			return errs.Wrap(err, "get or create event link")
		}

		result.IssueID = issue.IssueID
		result.IssueCreated = created
		result.LinkCreated = linked
		return nil
	}); err != nil {
		return RecordResult{}, errs.Wrap(err, "record processing issue")
	}

	if result.IssueCreated || result.LinkCreated {
		logging.Info(
			ctx,
			"processing issue recorded",
			slog.Uint64("raw_event_id", input.RawEventID),
			slog.String("checksum", checksum),
			slog.Bool("issue_created", result.IssueCreated),
			slog.Bool("link_created", result.LinkCreated),
		)
	}
	return result, nil
}
