package uow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"procissue/internal/infrastructure/persistence/sqlite/storeerr"
	"procissue/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork on a gorm transaction.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx joins an enclosing unit of work when ctx already carries one.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if tx, ok := ports.TxFromContext(ctx).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ports.WithTxContext(ctx, tx))
		return fnErr
	})
	if err == nil || (fnErr != nil && err == fnErr) {
		return err
	}
	// BEGIN or COMMIT failed.
	return storeerr.Wrap(err, "run transaction")
}
