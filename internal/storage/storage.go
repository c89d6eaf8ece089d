// Package storage persists extracted frames and other derived artifacts to
// an object store.
package storage

import (
	"context"
	"io"
)

// Uploader provides write access to the frame store. Put returns a
// reference usable as a source URL downstream.
type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
