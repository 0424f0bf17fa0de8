package preference

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("preference not found")

// Store persists small UI preferences as raw JSON documents keyed by name.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate keys, e.g. to find offline snapshots.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
