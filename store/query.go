package store

import (
	"context"

	"github.com/goliatone/go-userstore/pkg/types"
)

const defaultPageSize = 10

// Query returns one page of the predicate-filtered set. Pages are 1-indexed;
// the total counts the whole filtered set through a COUNT query that shares
// the data query's predicate application.
func (s *Store) Query(ctx context.Context, filter types.Filter, page, pageSize int, sortField, sortOrder string) (types.Page, error) {
	if s.db == nil {
		return types.Page{}, types.ErrNotInitialized
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	where := buildWhere(filter)

	total, err := where.Apply(s.conn(ctx).NewSelect().Model((*userRow)(nil))).Count(ctx)
	if err != nil {
		frag, params := where.Fragment()
		return types.Page{}, s.classify(err, "SELECT COUNT(*) FROM "+tableName+" WHERE "+frag, params, nil)
	}

	var rows []userRow
	err = where.Apply(s.conn(ctx).NewSelect().Model(&rows)).
		OrderExpr(sortColumn(sortField) + " " + sortDirection(sortOrder)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(ctx)
	if err != nil {
		frag, params := where.Fragment()
		return types.Page{}, s.classify(err, "SELECT FROM "+tableName+" WHERE "+frag, params, nil)
	}

	data, err := toDomainSlice(rows)
	if err != nil {
		return types.Page{}, err
	}
	return types.Page{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}
