package model

// ProcessingIssue is one fault class of a project. Data holds the
// gzip-compressed JSON payload.
type ProcessingIssue struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID uint64 `gorm:"column:project_id;not null;uniqueIndex:ux_processing_issues_project_checksum,priority:1"`
	Checksum  string `gorm:"column:checksum;type:varchar(40);not null;uniqueIndex:ux_processing_issues_project_checksum,priority:2"`
	Data      []byte `gorm:"column:data;type:blob;not null"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (ProcessingIssue) TableName() string {
	return "processing_issues"
}
