package blob

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/goliatone/go-userstore/pkg/types"
)

// Compile-time interface check.
var _ Store = (*PebbleStore)(nil)

// PebbleStore is a production [Store] backed by Pebble. It is safe for
// concurrent use — Pebble handles its own internal synchronisation.
//
// Buckets are simulated via key-prefixing: each bucket name is mapped to a
// byte prefix (bucket + '\x00'), keeping blobs from different buckets sorted
// in disjoint key ranges.
type PebbleStore struct {
	db *pebble.DB

	writeOpts *pebble.WriteOptions
	path      string
	logger    types.Logger

	// closed + mu guard against use-after-close. Individual operations
	// take an RLock; Close takes the write lock, draining in-flight
	// operations before teardown.
	closed atomic.Bool
	mu     sync.RWMutex
}

// Open creates or opens a Pebble-backed store at path. The caller must call
// Close when done to release all resources.
func Open(path string, opts ...Option) (*PebbleStore, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = types.NopLogger{}
	}

	cache := pebble.NewCache(cfg.CacheSize)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: cache})
	if err != nil {
		return nil, fmt.Errorf("blob: failed to open %s: %w", path, err)
	}

	writeOpts := pebble.NoSync
	if cfg.SyncWrites {
		writeOpts = pebble.Sync
	}

	store := &PebbleStore{
		db:        db,
		writeOpts: writeOpts,
		path:      path,
		logger:    log,
	}

	log.Info("blob store opened", "path", path)
	return store, nil
}

func (p *PebbleStore) Get(bucket, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return nil, ErrClosed
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	val, closer, err := p.db.Get(bucketedKey(bucket, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("blob: get failed: %w", err)
	}
	defer closer.Close()

	// Copy — the returned slice is only valid until closer.Close().
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (p *PebbleStore) Put(bucket, key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	if err := p.db.Set(bucketedKey(bucket, key), value, p.writeOpts); err != nil {
		return fmt.Errorf("blob: put failed: %w", err)
	}
	return nil
}

func (p *PebbleStore) Delete(bucket, key string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	if err := p.db.Delete(bucketedKey(bucket, key), p.writeOpts); err != nil {
		return fmt.Errorf("blob: delete failed: %w", err)
	}
	return nil
}

func (p *PebbleStore) Has(bucket, key string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	_, closer, err := p.db.Get(bucketedKey(bucket, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("blob: has failed: %w", err)
	}
	closer.Close()
	return true, nil
}

// Close performs a graceful shutdown: flushes pending writes, closes the
// underlying engine, and releases all resources.
func (p *PebbleStore) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.db.Flush(); err != nil {
		p.logger.Error("blob store flush on close failed", err, "path", p.path)
	}
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("blob: close failed: %w", err)
	}
	p.logger.Info("blob store closed", "path", p.path)
	return nil
}

// bucketedKey maps (bucket, key) onto a single Pebble key. The zero byte
// separator cannot occur in bucket names, keeping ranges disjoint.
func bucketedKey(bucket, key string) []byte {
	out := make([]byte, 0, len(bucket)+1+len(key))
	out = append(out, bucket...)
	out = append(out, 0)
	out = append(out, key...)
	return out
}
