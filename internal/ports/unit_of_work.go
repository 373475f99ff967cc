package ports

import "context"

// Tx is the store's transaction handle; only the adapter knows its type.
type Tx interface{}

// UnitOfWork runs fn inside one store transaction. A non-nil error from fn
// rolls back; nil commits. Repositories pick the handle up from ctx.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns nil outside a unit of work.
func TxFromContext(ctx context.Context) Tx {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey{})
}
