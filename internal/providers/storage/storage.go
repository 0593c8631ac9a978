// Package storage holds the object store the receipt pipeline writes to.
package storage

import (
	"context"

	"go.uber.org/fx"
)

// ObjectStore is the contract the purchase flow needs: put a blob under
// a key and get back a publicly resolvable URL, remove a key, and map a
// previously returned URL back to its key for cleanup.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
	Remove(ctx context.Context, key string) error
	PathFromURL(url string) string
}

var Module = fx.Module("providers.storage",
	fx.Provide(NewS3Store),
)
