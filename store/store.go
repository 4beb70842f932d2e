// Package store implements an embedded, single-writer record store for
// user-profile records over SQLite, with durable snapshot persistence to a
// blob-keyed backend.
//
// One Store owns one database image at a time. Operations are safe to call
// from a single logical writer; concurrent callers must serialize externally
// (one store per worker, or an external mutex) — the engine handle is not
// safe for parallel mutation. Persistence is explicit: the image travels to
// the blob backend only on Close or when the caller exports it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-userstore/blob"
	"github.com/goliatone/go-userstore/pkg/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Config wires the record store.
type Config struct {
	// Name identifies this store; it keys the durable snapshot and names
	// the working image file.
	Name string

	// Blobs receives the database image on Close and provides it back on
	// Initialize.
	Blobs blob.Store

	// Dir is the scratch directory for the live image file. Defaults to
	// the system temp directory.
	Dir string

	Clock  types.Clock
	Logger types.Logger
}

// Store is the public record-store surface. Construct with New, then call
// Initialize before any other operation.
type Store struct {
	name   string
	blobs  blob.Store
	dir    string
	path   string
	clock  types.Clock
	logger types.Logger

	// db is nil before Initialize and after Close; every operation treats
	// that as "not initialized".
	db *bun.DB
}

// New constructs a record store from the supplied configuration.
func New(cfg Config) (*Store, error) {
	if cfg.Name == "" {
		return nil, types.ErrStoreNameRequired
	}
	if cfg.Blobs == nil {
		return nil, types.ErrBlobStoreRequired
	}

	dir := cfg.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Store{
		name:   cfg.Name,
		blobs:  cfg.Blobs,
		dir:    dir,
		path:   filepath.Join(dir, cfg.Name+".db"),
		clock:  clock,
		logger: logger,
	}, nil
}

// Initialize loads the prior image from the blob backend if one exists under
// this store's name, otherwise starts a fresh image, then ensures the schema.
// Calling Initialize on an already-initialized store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: create working directory").
			WithCode(goerrors.CodeInternal)
	}

	data, err := s.blobs.Get(blob.DefaultBucket, s.name)
	switch {
	case err == nil:
		if err := os.WriteFile(s.path, data, 0o600); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: restore image").
				WithCode(goerrors.CodeInternal)
		}
		s.logger.Info("loaded existing database", "store", s.name, "bytes", len(data))
	case errors.Is(err, blob.ErrKeyNotFound):
		// Drop any stale working file from a previous crash.
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: reset working file").
				WithCode(goerrors.CodeInternal)
		}
		s.logger.Info("created new database", "store", s.name)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: load snapshot").
			WithCode(goerrors.CodeInternal)
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.EnsureSchema(ctx)
}

func (s *Store) open() error {
	sqldb, err := sql.Open("sqlite3", "file:"+s.path+"?_fk=1")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: open engine").
			WithCode(goerrors.CodeInternal)
	}
	// The engine handle is not safe for parallel mutation; a single
	// connection also keeps read-only fan-out serialized.
	sqldb.SetMaxOpenConns(1)
	s.db = bun.NewDB(sqldb, sqlitedialect.New())
	return nil
}

// Export returns the full database image as an opaque byte sequence. The
// snapshot is taken with VACUUM INTO, so it is consistent and compact even
// while the live handle stays open.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	if s.db == nil {
		return nil, types.ErrNotInitialized
	}

	snapshot := s.path + ".snapshot"
	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(snapshot); err != nil && !os.IsNotExist(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: reset snapshot file").
			WithCode(goerrors.CodeInternal)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: export image").
			WithCode(goerrors.CodeInternal)
	}
	defer os.Remove(snapshot)

	data, err := os.ReadFile(snapshot)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: read snapshot").
			WithCode(goerrors.CodeInternal)
	}
	s.logger.Debug("exported image", "store", s.name, "bytes", len(data))
	return data, nil
}

// Close persists the current image to the blob backend under the store's
// name, then releases the engine handle. Subsequent operations fail with
// types.ErrNotInitialized until Initialize is called again. Closing a store
// that is not initialized is a no-op.
func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	data, err := s.Export(ctx)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(blob.DefaultBucket, s.name, data); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: persist snapshot").
			WithCode(goerrors.CodeInternal)
	}
	s.release()
	s.logger.Info("database closed", "store", s.name, "bytes", len(data))
	return nil
}

// release tears down the engine handle and working file without persisting.
func (s *Store) release() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("engine close failed", err, "store", s.name)
		}
		s.db = nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("working file cleanup failed", err, "store", s.name)
	}
}
