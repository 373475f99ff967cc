package ports

import (
	"context"
	"errors"

	"procissue/internal/domain/processing"
)

var ErrProcessingIssueNotFound = errors.New("processing issue not found")

type ProcessingIssue struct {
	IssueID   uint64
	ProjectID uint64
	Checksum  string
	Payload   processing.Payload
	CreatedAt string
}

func (i ProcessingIssue) Scope() string              { return i.Payload.Scope }
func (i ProcessingIssue) Object() string             { return i.Payload.Object }
func (i ProcessingIssue) Type() processing.FaultType { return i.Payload.Type }

type ProcessingIssueCreate struct {
	ProjectID uint64
	Checksum  string
	Payload   processing.Payload
	CreatedAt string
}

type ProcessingIssueSummary struct {
	ProcessingIssue
	NumEvents int64
}

type ProcessingIssueReadRepository interface {
	ListIssues(ctx context.Context, projectID uint64) ([]ProcessingIssueSummary, error)
	GetIssue(ctx context.Context, projectID uint64, checksum string) (ProcessingIssue, error)
	// ListLinkedRawEvents returns the distinct raw events linked to the fault
	// class (projectID, checksum), ascending.
	ListLinkedRawEvents(ctx context.Context, projectID uint64, checksum string) ([]uint64, error)
	// ListBlockedRawEvents returns the subset of rawEventIDs still linked to
	// any fault class of projectID.
	ListBlockedRawEvents(ctx context.Context, projectID uint64, rawEventIDs []uint64) ([]uint64, error)
}

type ProcessingIssueRepository interface {
	ProcessingIssueReadRepository
	// GetOrCreateIssue inserts the fault class unless (ProjectID, Checksum)
	// exists; an existing row is returned untouched.
	GetOrCreateIssue(ctx context.Context, input ProcessingIssueCreate) (ProcessingIssue, bool, error)
	GetOrCreateLink(ctx context.Context, rawEventID uint64, issueID uint64) (bool, error)
	DeleteLinks(ctx context.Context, projectID uint64, checksum string) (int64, error)
	DeleteIssues(ctx context.Context, projectID uint64, checksum string) (int64, error)
}
