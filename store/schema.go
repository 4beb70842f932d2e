package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-userstore/blob"
	"github.com/goliatone/go-userstore/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema idempotently creates the record table and its secondary
// indexes. It succeeds whether the image is fresh or already initialized.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return types.ErrNotInitialized
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.conn(ctx).ExecContext(ctx, stmt); err != nil {
			return s.classify(err, stmt, nil, nil)
		}
	}
	return nil
}

// DropSchema drops the record table, deletes the durable snapshot, and swaps
// in a brand-new empty image. The schema is not recreated until the next
// EnsureSchema or Initialize. Every failure is caught and reported as false,
// never propagated.
func (s *Store) DropSchema(ctx context.Context) bool {
	if s.db == nil {
		s.logger.Error("drop schema on uninitialized store", types.ErrNotInitialized, "store", s.name)
		return false
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tableName); err != nil {
		s.logger.Error("drop table failed", err, "store", s.name)
		return false
	}
	if err := s.blobs.Delete(blob.DefaultBucket, s.name); err != nil {
		s.logger.Error("snapshot delete failed", err, "store", s.name)
		return false
	}

	s.release()
	if err := s.open(); err != nil {
		s.logger.Error("image reset failed", err, "store", s.name)
		return false
	}
	return true
}

// HasTable reports whether the record table exists in the live image.
func (s *Store) HasTable(ctx context.Context) (bool, error) {
	if s.db == nil {
		return false, types.ErrNotInitialized
	}
	var name string
	err := s.conn(ctx).
		QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).
		Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: table probe").
			WithCode(goerrors.CodeInternal)
	}
	return true, nil
}
