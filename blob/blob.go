// Package blob provides the durable snapshot backend for go-userstore:
// byte blobs addressed by a logical bucket and a key. The primary interface
// is [Store], satisfied by [PebbleStore] (production, on-disk) and
// [MemoryStore] (tests, ephemeral). Create instances with [Open] or
// [NewMemoryStore] and inject them via the store configuration.
package blob

import "errors"

// Sentinel errors returned by Store implementations.
var (
	ErrClosed      = errors.New("blob: store is closed")
	ErrKeyNotFound = errors.New("blob: key not found")
	ErrEmptyKey    = errors.New("blob: key must not be empty")
)

// DefaultBucket is the bucket used by the record store for database
// snapshots.
const DefaultBucket = "databases"

// Store defines the contract for snapshot persistence. All methods are safe
// for concurrent use by multiple goroutines.
type Store interface {
	// Get retrieves the value for a key in the given bucket.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(bucket, key string) ([]byte, error)

	// Put stores a key-value pair in the given bucket.
	Put(bucket, key string, value []byte) error

	// Delete removes a key from the given bucket. Deleting a non-existent
	// key is not an error.
	Delete(bucket, key string) error

	// Has reports whether a key exists in the given bucket.
	Has(bucket, key string) (bool, error)

	// Close releases all resources. After Close returns, every other
	// method returns ErrClosed.
	Close() error
}
