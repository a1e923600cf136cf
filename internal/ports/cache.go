package ports

import (
	"context"
	"time"
)

// RateLimitStore tracks fixed-window request counts for abuse-prone public
// endpoints (signup initiate, forgot password). It is cache-backed so hot
// keys never touch the record store.
type RateLimitStore interface {
	// Hit records one request against key and returns the count observed in
	// the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Clear(ctx context.Context, key string) error
}
