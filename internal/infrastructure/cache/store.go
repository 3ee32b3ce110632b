package cache

import (
	"context"
	"time"
)

// Store is a key-value cache with per-key expiration. A miss is reported
// via the boolean, not an error; errors mean the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
