package store

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-userstore/pkg/types"
)

// RemoveDuplicates deletes all but one record from every group of records
// sharing the given field values, inside one transaction, and returns the
// number of rows deleted. With keepOldest the survivor is the earliest by
// creation time (ties broken by lowest identifier); otherwise it is the
// lowest identifier. Group fields must come from the column allow-list.
//
// A row dies exactly when a strictly better keeper with identical group
// values exists, so no staging relation is needed: the whole operation is a
// single correlated DELETE.
func (s *Store) RemoveDuplicates(ctx context.Context, fields []string, keepOldest bool) (int, error) {
	if s.db == nil {
		return 0, types.ErrNotInitialized
	}
	if len(fields) == 0 {
		return 0, goerrors.New("userstore: at least one group field is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	match := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := columnAllowlist[field]; !ok {
			return 0, goerrors.New(fmt.Sprintf("userstore: unknown group field %q", field), goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest).
				WithMetadata(map[string]any{"field": field})
		}
		// IS keeps NULL group values comparable.
		match = append(match, fmt.Sprintf("keeper.%s IS %s.%s", field, tableName, field))
	}

	better := "keeper.id < " + tableName + ".id"
	if keepOldest {
		better = "(keeper.created_at < " + tableName + ".created_at" +
			" OR (keeper.created_at = " + tableName + ".created_at AND keeper.id < " + tableName + ".id))"
	}

	sqlText := "DELETE FROM " + tableName +
		" WHERE EXISTS (SELECT 1 FROM " + tableName + " AS keeper" +
		" WHERE " + strings.Join(match, " AND ") +
		" AND " + better + ")"

	deleted := 0
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, sqlText)
		if err != nil {
			return s.classify(err, sqlText, nil, nil)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return s.classify(err, sqlText, nil, nil)
		}
		deleted = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("removed duplicates", "store", s.name, "fields", strings.Join(fields, ","), "deleted", deleted)
	return deleted, nil
}
