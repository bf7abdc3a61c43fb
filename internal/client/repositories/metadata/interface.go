// Package metadata is the key/value table behind the SQLite token store.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Missing keys are left out of reads.
type Repository interface {
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
