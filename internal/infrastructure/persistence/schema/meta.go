package schema

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procissue/internal/errs"
)

// VersionKey is the project_meta row holding the migrated schema version.
const VersionKey = "schema_version"

// ProjectMeta is store-level bookkeeping, not tied to any tracked project.
type ProjectMeta struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string    `gorm:"column:key;type:text;uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ProjectMeta) TableName() string {
	return "project_meta"
}

// Migrate creates or alters tables plus project_meta, then stamps version.
// Running it again with the same version is a no-op apart from updated_at.
func Migrate(ctx context.Context, db *gorm.DB, version string, tables ...any) error {
	if db == nil {
		return errors.New("db is required")
	}

	db = db.WithContext(ctx)
	if err := db.AutoMigrate(append(tables, &ProjectMeta{})...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	now := time.Now().UTC()
	meta := ProjectMeta{Key: VersionKey, Value: version, CreatedAt: now, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error; err != nil {
		return errs.Wrap(err, "stamp schema version")
	}
	return nil
}

// Version returns the stamped schema version, or "" before the first Migrate.
func Version(ctx context.Context, db *gorm.DB) (string, error) {
	if db == nil {
		return "", errors.New("db is required")
	}

	var meta ProjectMeta
	err := db.WithContext(ctx).Where("key = ?", VersionKey).Take(&meta).Error
	switch {
	case err == nil:
		return meta.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	case db.Migrator().HasTable(&ProjectMeta{}):
		return "", errs.Wrap(err, "read schema version")
	default:
		return "", nil
	}
}
