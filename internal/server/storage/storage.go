// Package storage uploads course resources and hands out time-limited
// download links for them.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the resource bucket. Keys are bucket-relative.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
