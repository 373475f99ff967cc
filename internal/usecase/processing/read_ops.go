package processing

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	"procissue/internal/ports"
)

func (s *Service) ListIssues(ctx context.Context, projectID uint64) ([]ports.ProcessingIssueSummary, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	items, err := s.repo.ListIssues(ctx, projectID)
	if err != nil {
		return nil, errs.Wrap(err, "list processing issues")
	}
	return items, nil
}

// GetIssue returns the fault class with the raw events it currently blocks.
func (s *Service) GetIssue(ctx context.Context, projectID uint64, identity domain.Identity) (IssueDetail, error) {
	if err := s.checkReady(ctx); err != nil {
		return IssueDetail{}, err
	}

	checksum := identity.Checksum()
	var detail IssueDetail
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		issue, err := s.repo.GetIssue(txCtx, projectID, checksum)
		if err != nil {
			return err
		}
		rawEventIDs, err := s.repo.ListLinkedRawEvents(txCtx, projectID, checksum)
		if err != nil {
			return err
		}
		detail = IssueDetail{ProcessingIssue: issue, RawEventIDs: rawEventIDs}
		return nil
	}); err != nil {
		if errors.Is(err, ports.ErrProcessingIssueNotFound) {
			return IssueDetail{}, err
		}
		return IssueDetail{}, errs.Wrap(err, "get processing issue")
	}
	return detail, nil
}

// LastResolved reports when identity was last resolved in the project, as
// far as the cache remembers.
func (s *Service) LastResolved(ctx context.Context, projectID uint64, identity domain.Identity) (time.Time, bool, error) {
	if ctx == nil {
		return time.Time{}, false, errContextRequired
	}
	if s.cache == nil {
		return time.Time{}, false, nil
	}

	value, found, err := s.cache.Get(ctx, lastResolvedKey(projectID, identity.Checksum()))
	if err != nil {
		return time.Time{}, false, errs.Wrap(err, "read last resolved")
	}
	if !found {
		return time.Time{}, false, nil
	}

	resolvedAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false, errs.Wrap(err, "parse last resolved")
	}
	return resolvedAt, true, nil
}

func (s *Service) Taxonomy() *domain.Taxonomy {
	if s.taxonomy == nil {
		return domain.DefaultTaxonomy()
	}
	return s.taxonomy
}
