package model

type ProcessingKV struct {
	Key       string  `gorm:"column:key;type:text;primaryKey"`
	Value     string  `gorm:"column:value;type:text;not null"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text"`
}

func (ProcessingKV) TableName() string {
	return "processing_kv"
}

// All returns every table of the module in migration order.
func All() []any {
	return []any{
		&ProcessingIssue{},
		&EventProcessingIssue{},
		&ProcessingKV{},
	}
}
