// Package assets stores generated media bytes in object storage and hands
// back stable references for stage results to carry.
package assets

import (
	"context"
)

// Store uploads generated media and returns a reference to it
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
