package store

import (
	"context"
	"time"

	"github.com/goliatone/go-userstore/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Statistics aggregates counters under the supplied predicate filter. The
// sub-queries share one WHERE fragment and fan out concurrently; they are
// read-only, so the single engine connection serializes them safely. Do not
// call Statistics while a write transaction is open — the results could
// reflect a half-committed state.
func (s *Store) Statistics(ctx context.Context, filter types.Filter) (types.Stats, error) {
	if s.db == nil {
		return types.Stats{}, types.ErrNotInitialized
	}

	frag, params := buildWhere(filter).Fragment()
	// The constant base keeps " AND ..." suffixes valid with no predicates.
	whereSQL := "WHERE 1=1"
	if frag != "" {
		whereSQL = "WHERE " + frag
	}

	now := s.clock.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	var stats types.Stats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dest *int, extra string, extraArgs ...any) {
		sqlText := "SELECT COUNT(*) FROM " + tableName + " " + whereSQL + extra
		args := append(append([]any{}, params...), extraArgs...)
		g.Go(func() error {
			if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(dest); err != nil {
				return s.classify(err, sqlText, args, nil)
			}
			return nil
		})
	}

	count(&stats.Total, "")
	count(&stats.VerifiedCount, " AND is_verified = ?", 1)
	count(&stats.BusinessCount, " AND is_business = ?", 1)
	count(&stats.ActiveToday, " AND last_login_at >= ?", encodeTime(startOfDay))
	count(&stats.NewThisWeek, " AND created_at >= ?", encodeTime(weekAgo))

	g.Go(func() error {
		sqlText := "SELECT COALESCE(AVG(followers), 0), COALESCE(MAX(followers), 0), COALESCE(MIN(followers), 0)" +
			" FROM " + tableName + " " + whereSQL
		err := s.db.QueryRowContext(ctx, sqlText, params...).
			Scan(&stats.AvgFollowers, &stats.MaxFollowers, &stats.MinFollowers)
		if err != nil {
			return s.classify(err, sqlText, params, nil)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return types.Stats{}, err
	}
	return stats, nil
}
