// Package blob provides content-addressable object storage for file payloads.
// Keys are content hashes, so identical bytes land on the same object no
// matter how many file names reference them.
package blob

import (
	"context"
	"errors"
	"io"
)

// Namespace separates pre-compression payloads from compressed artifacts.
type Namespace string

const (
	// NamespacePlain holds uploaded bytes before compression.
	NamespacePlain Namespace = "plain"
	// NamespaceZipped holds compressed artifacts produced by the zipper.
	NamespaceZipped Namespace = "zipped"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("blob: object not found")

// Store is a key-addressed binary store.
type Store interface {
	// Put writes the reader's bytes under ns/key. size may be -1 when unknown.
	Put(ctx context.Context, ns Namespace, key string, r io.Reader, size int64) error

	// Get opens the object under ns/key for reading.
	// Returns ErrNotFound when it does not exist.
	Get(ctx context.Context, ns Namespace, key string) (io.ReadCloser, error)

	// Delete removes the object under ns/key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, ns Namespace, key string) error

	// Exists reports whether an object is present under ns/key.
	Exists(ctx context.Context, ns Namespace, key string) (bool, error)
}

// Path returns the object key within the bucket for ns/key.
func Path(ns Namespace, key string) string {
	return string(ns) + "/" + key
}
