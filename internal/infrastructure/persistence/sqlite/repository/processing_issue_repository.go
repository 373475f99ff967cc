package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procissue/internal/infrastructure/persistence/sqlite/model"
	"procissue/internal/infrastructure/persistence/sqlite/storeerr"
	"procissue/internal/ports"
)

// blockedLookupChunk bounds the IN list of a single blocked-events query.
const blockedLookupChunk = 500

type issueEventCount struct {
	ProcessingIssueID uint64 `gorm:"column:processing_issue_id"`
	NumEvents         int64  `gorm:"column:num_events"`
}

type ProcessingIssueRepository struct {
	db *gorm.DB
}

var _ ports.ProcessingIssueRepository = (*ProcessingIssueRepository)(nil)

func NewProcessingIssueRepository(db *gorm.DB) *ProcessingIssueRepository {
	return &ProcessingIssueRepository{db: db}
}

func (r *ProcessingIssueRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *ProcessingIssueRepository) GetOrCreateIssue(ctx context.Context, input ports.ProcessingIssueCreate) (ports.ProcessingIssue, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ProcessingIssue{}, false, err
	}

	data, err := encodePayload(input.Payload)
	if err != nil {
		return ports.ProcessingIssue{}, false, err
	}

	row := model.ProcessingIssue{
		ProjectID: input.ProjectID,
		Checksum:  input.Checksum,
		Data:      data,
		CreatedAt: input.CreatedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "checksum"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.ProcessingIssue{}, false, storeerr.Wrap(result.Error, "insert processing issue")
	}

	if result.RowsAffected == 0 {
		existing, err := getIssueByChecksum(db, input.ProjectID, input.Checksum)
		if err != nil {
			return ports.ProcessingIssue{}, false, err
		}
		return existing, false, nil
	}

	issue, err := mapIssue(row)
	if err != nil {
		return ports.ProcessingIssue{}, false, err
	}
	return issue, true, nil
}

func (r *ProcessingIssueRepository) GetOrCreateLink(ctx context.Context, rawEventID uint64, issueID uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.EventProcessingIssue{
		RawEventID:        rawEventID,
		ProcessingIssueID: issueID,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "raw_event_id"}, {Name: "processing_issue_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, storeerr.Wrap(result.Error, "insert event processing issue")
	}
	return result.RowsAffected > 0, nil
}

func (r *ProcessingIssueRepository) ListIssues(ctx context.Context, projectID uint64) ([]ports.ProcessingIssueSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ProcessingIssue
	if err := db.
		Where("project_id = ?", projectID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, storeerr.Wrap(err, "query processing issues")
	}
	if len(rows) == 0 {
		return []ports.ProcessingIssueSummary{}, nil
	}

	var counts []issueEventCount
	sub := db.Model(&model.ProcessingIssue{}).Select("id").Where("project_id = ?", projectID)
	if err := db.Model(&model.EventProcessingIssue{}).
		Select("processing_issue_id, count(*) as num_events").
		Where("processing_issue_id IN (?)", sub).
		Group("processing_issue_id").
		Scan(&counts).Error; err != nil {
		return nil, storeerr.Wrap(err, "count linked raw events")
	}

	numEvents := make(map[uint64]int64, len(counts))
	for _, c := range counts {
		numEvents[c.ProcessingIssueID] = c.NumEvents
	}

	items := make([]ports.ProcessingIssueSummary, 0, len(rows))
	for _, row := range rows {
		issue, err := mapIssue(row)
		if err != nil {
			return nil, err
		}
		items = append(items, ports.ProcessingIssueSummary{
			ProcessingIssue: issue,
			NumEvents:       numEvents[row.ID],
		})
	}
	return items, nil
}

func (r *ProcessingIssueRepository) GetIssue(ctx context.Context, projectID uint64, checksum string) (ports.ProcessingIssue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ProcessingIssue{}, err
	}
	return getIssueByChecksum(db, projectID, checksum)
}

func (r *ProcessingIssueRepository) ListLinkedRawEvents(ctx context.Context, projectID uint64, checksum string) ([]uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	if err := db.Model(&model.EventProcessingIssue{}).
		Distinct("raw_event_id").
		Where("processing_issue_id IN (?)", issueIDsByChecksum(db, projectID, checksum)).
		Order("raw_event_id asc").
		Pluck("raw_event_id", &ids).Error; err != nil {
		return nil, storeerr.Wrap(err, "query linked raw events")
	}
	return ids, nil
}

func (r *ProcessingIssueRepository) ListBlockedRawEvents(ctx context.Context, projectID uint64, rawEventIDs []uint64) ([]uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(rawEventIDs) == 0 {
		return nil, nil
	}

	blocked := make([]uint64, 0, len(rawEventIDs))
	for start := 0; start < len(rawEventIDs); start += blockedLookupChunk {
		end := min(start+blockedLookupChunk, len(rawEventIDs))

		var ids []uint64
		sub := db.Model(&model.ProcessingIssue{}).Select("id").Where("project_id = ?", projectID)
		if err := db.Model(&model.EventProcessingIssue{}).
			Distinct("raw_event_id").
			Where("raw_event_id IN ?", rawEventIDs[start:end]).
			Where("processing_issue_id IN (?)", sub).
			Order("raw_event_id asc").
			Pluck("raw_event_id", &ids).Error; err != nil {
			return nil, storeerr.Wrap(err, "query blocked raw events")
		}
		blocked = append(blocked, ids...)
	}
	return blocked, nil
}

func (r *ProcessingIssueRepository) DeleteLinks(ctx context.Context, projectID uint64, checksum string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.
		Where("processing_issue_id IN (?)", issueIDsByChecksum(db, projectID, checksum)).
		Delete(&model.EventProcessingIssue{})
	if result.Error != nil {
		return 0, storeerr.Wrap(result.Error, "delete event processing issues")
	}
	return result.RowsAffected, nil
}

func (r *ProcessingIssueRepository) DeleteIssues(ctx context.Context, projectID uint64, checksum string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.
		Where("project_id = ? AND checksum = ?", projectID, checksum).
		Delete(&model.ProcessingIssue{})
	if result.Error != nil {
		return 0, storeerr.Wrap(result.Error, "delete processing issues")
	}
	return result.RowsAffected, nil
}

func issueIDsByChecksum(db *gorm.DB, projectID uint64, checksum string) *gorm.DB {
	return db.Model(&model.ProcessingIssue{}).
		Select("id").
		Where("project_id = ? AND checksum = ?", projectID, checksum)
}

func getIssueByChecksum(db *gorm.DB, projectID uint64, checksum string) (ports.ProcessingIssue, error) {
	var row model.ProcessingIssue
	if err := db.
		Where("project_id = ? AND checksum = ?", projectID, checksum).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ProcessingIssue{}, ports.ErrProcessingIssueNotFound
		}
		return ports.ProcessingIssue{}, storeerr.Wrap(err, "query processing issue")
	}
	return mapIssue(row)
}

func mapIssue(row model.ProcessingIssue) (ports.ProcessingIssue, error) {
	payload, err := decodePayload(row.Data)
	if err != nil {
		return ports.ProcessingIssue{}, fmt.Errorf("decode processing issue %d: %w", row.ID, err)
	}
	return ports.ProcessingIssue{
		IssueID:   row.ID,
		ProjectID: row.ProjectID,
		Checksum:  row.Checksum,
		Payload:   payload,
		CreatedAt: row.CreatedAt,
	}, nil
}
