package blob

import "github.com/goliatone/go-userstore/pkg/types"

// Config holds tunable parameters for a [PebbleStore] instance. Use
// functional [Option] values with [Open] rather than constructing a Config
// directly.
type Config struct {
	// CacheSize is the shared block-cache capacity in bytes.
	CacheSize int64

	// SyncWrites controls whether each write is synced to stable storage.
	// Snapshots are written rarely and are the only durability the record
	// store has, so the default is true.
	SyncWrites bool

	// Logger receives structured operational log messages.
	Logger types.Logger
}

// DefaultConfig returns a Config tuned for a snapshot workload: few, large,
// durable writes and occasional point reads.
func DefaultConfig() *Config {
	return &Config{
		CacheSize:  32 << 20, // 32 MB
		SyncWrites: true,
	}
}

// Option mutates the configuration.
type Option func(*Config)

// WithCacheSize overrides the block-cache capacity.
func WithCacheSize(size int64) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.CacheSize = size
		}
	}
}

// WithSyncWrites controls per-write durability.
func WithSyncWrites(sync bool) Option {
	return func(cfg *Config) {
		cfg.SyncWrites = sync
	}
}

// WithLogger wires a logger for operational diagnostics.
func WithLogger(logger types.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}
