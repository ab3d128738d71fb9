// Package blob stores opaque byte values under string keys. It is the durable
// medium of the embedded store, which keeps its whole database image under a
// single fixed key.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob: not found")

type Store interface {
	// Get returns ErrNotFound when nothing was ever stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
