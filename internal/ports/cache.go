package ports

import (
	"context"
	"time"
)

// Cache is best-effort key-value bookkeeping next to the processing issue
// tables (for example the last resolve time of a fault class). Losing an
// entry never changes Record or Resolve results.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
