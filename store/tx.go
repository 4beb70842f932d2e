package store

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/uptrace/bun"
)

type txKey struct{}

func txFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(bun.Tx)
	return tx, ok
}

// RunInTx executes fn inside a transaction threaded through the context. If
// the context already carries a transaction, fn joins it directly: the inner
// call is swallowed into the outer transaction's atomicity and an inner
// failure propagates up to trigger the outer rollback. Otherwise a new
// transaction is opened, committed when fn returns nil and rolled back when
// it returns an error.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db := s.db
	if db == nil {
		return types.ErrNotInitialized
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: begin transaction").
			WithCode(goerrors.CodeInternal)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", rbErr, "store", s.name)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: commit transaction").
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// conn resolves the ambient transaction, falling back to the live database
// handle.
func (s *Store) conn(ctx context.Context) bun.IDB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return s.db
}
