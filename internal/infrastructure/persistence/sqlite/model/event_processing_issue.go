package model

// EventProcessingIssue links a raw event to a fault class blocking it.
type EventProcessingIssue struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	RawEventID        uint64 `gorm:"column:raw_event_id;not null;uniqueIndex:ux_event_processing_issues_event_issue,priority:1"`
	ProcessingIssueID uint64 `gorm:"column:processing_issue_id;not null;index;uniqueIndex:ux_event_processing_issues_event_issue,priority:2"`
}

func (EventProcessingIssue) TableName() string {
	return "event_processing_issues"
}
