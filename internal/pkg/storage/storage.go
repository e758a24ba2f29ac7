// Package storage persists opaque blobs under string keys.
//
// Every driver reports a missing key as ErrObjectNotFound so callers can tell
// "nothing saved yet" apart from backend failures.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates that no blob is stored under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines blob storage operations.
type Storage interface {
	io.Closer

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
