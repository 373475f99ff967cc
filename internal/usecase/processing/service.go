package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"procissue/internal/bootstrap/logging"
	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	"procissue/internal/ports"
)

type Service struct {
	repo     ports.ProcessingIssueRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	taxonomy *domain.Taxonomy
	now      func() time.Time
}

// NewService wires the recorder and resolver. cache and taxonomy may be nil.
func NewService(repo ports.ProcessingIssueRepository, uow ports.UnitOfWork, cache ports.Cache, taxonomy *domain.Taxonomy) *Service {
	return &Service{
		repo:     repo,
		uow:      uow,
		cache:    cache,
		taxonomy: taxonomy,
		now:      time.Now,
	}
}

type RecordInput struct {
	ProjectID   uint64
	RawEventID  uint64
	Identity    domain.Identity
	Diagnostics domain.Diagnostics
}

type RecordResult struct {
	IssueID      uint64
	Checksum     string
	IssueCreated bool
	LinkCreated  bool
}

type ResolveInput struct {
	ProjectID uint64
	Identity  domain.Identity
}

type IssueDetail struct {
	ports.ProcessingIssue
	RawEventIDs []uint64
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errContextRequired
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepositoryRequired
	}
	if s.uow == nil {
		return errUnitOfWorkRequired
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func lastResolvedKey(projectID uint64, checksum string) string {
	return fmt.Sprintf("resolved:%d:%s", projectID, checksum)
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		logging.Warn(ctx, "cache write failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}

func serviceContext(ctx context.Context, op string, projectID uint64, identity domain.Identity) context.Context {
	return logging.WithAttrs(
		ctx,
		slog.String("component", "usecase.processing"),
		slog.String("op", op),
		slog.Uint64("project_id", projectID),
		slog.String("fault", identity.String()),
	)
}
