// Package blob puts and gets opaque byte payloads against the
// object-storage bucket holding published project artifacts.
package blob

import (
	"context"
	"fmt"
)

// PutOptions carries the object metadata set at write time.
type PutOptions struct {
	ContentType     string
	ContentEncoding string
}

// Store is the narrow surface the publish pipeline needs from object
// storage. Writes are idempotent overwrites by key; there is no
// versioning and no conditional write.
type Store interface {
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// StorageError wraps a blob-store I/O failure with the operation and
// key it occurred on.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
