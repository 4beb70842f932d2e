package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/stretchr/testify/require"
)

// seedMixed inserts ten records: three verified heavyweights and seven
// unverified ones with ascending follower counts.
func seedMixed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		u := fixtureUser(fmt.Sprintf("user%02d", i))
		u.Followers = 100 * (i + 1)
		u.IsVerified = i < 3
		_, err := s.Create(ctx, u)
		require.NoError(t, err)
	}
}

func TestQueryFiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedMixed(t, s)

	page, err := s.Query(ctx, types.Filter{IsVerified: boolPtr(true)}, 1, 10, "", "")
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 3)
	for _, u := range page.Data {
		require.True(t, u.IsVerified)
	}

	page, err = s.Query(ctx, types.Filter{IsVerified: boolPtr(false)}, 1, 10, "", "")
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)
	require.Len(t, page.Data, 7)
}

func TestQueryPagination(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedMixed(t, s)

	seen := map[int64]bool{}
	for p := 1; p <= 4; p++ {
		page, err := s.Query(ctx, types.Filter{}, p, 3, "", "")
		require.NoError(t, err)
		require.Equal(t, 10, page.Total)
		require.Equal(t, 4, page.TotalPages)
		require.Equal(t, p, page.Page)
		if p < 4 {
			require.Len(t, page.Data, 3)
		} else {
			require.Len(t, page.Data, 1)
		}
		for _, u := range page.Data {
			require.False(t, seen[u.ID], "record repeated across pages")
			seen[u.ID] = true
		}
	}
	require.Len(t, seen, 10)

	// Past the last window the page is empty but the total still holds.
	page, err := s.Query(ctx, types.Filter{}, 5, 3, "", "")
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Equal(t, 10, page.Total)
}

func TestQueryNormalizesPageArgs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedMixed(t, s)

	page, err := s.Query(ctx, types.Filter{}, 0, 0, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, defaultPageSize, page.PageSize)
	require.Len(t, page.Data, 10)
}

func TestQuerySorting(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedMixed(t, s)

	page, err := s.Query(ctx, types.Filter{}, 1, 3, "followers", "DESC")
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	require.Equal(t, 1000, page.Data[0].Followers)
	require.Equal(t, 900, page.Data[1].Followers)
	require.Equal(t, 800, page.Data[2].Followers)

	// An unknown sort field falls back to the user name ordering.
	page, err = s.Query(ctx, types.Filter{}, 1, 2, "no_such_column", "")
	require.NoError(t, err)
	require.Equal(t, "user00", page.Data[0].UserName)
	require.Equal(t, "user01", page.Data[1].UserName)
}

func TestQueryTimeBounds(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	_, err := s.Create(ctx, fixtureUser("early"))
	require.NoError(t, err)
	cutoff := clock.Now().Add(30 * time.Minute)
	clock.Advance(time.Hour)
	_, err = s.Create(ctx, fixtureUser("late"))
	require.NoError(t, err)

	page, err := s.Query(ctx, types.Filter{CreatedAfter: timePtr(cutoff)}, 1, 10, "", "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "late", page.Data[0].UserName)

	page, err = s.Query(ctx, types.Filter{CreatedBefore: timePtr(cutoff)}, 1, 10, "", "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "early", page.Data[0].UserName)
}

func TestQuerySearchText(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	alice := fixtureUser("alice")
	alice.FullName = "Alice Liddell"
	bob := fixtureUser("bob")
	bob.FullName = "Robert Liddell"
	carol := fixtureUser("carol")
	carol.FullName = "Carol King"
	for _, u := range []types.User{alice, bob, carol} {
		_, err := s.Create(ctx, u)
		require.NoError(t, err)
	}

	page, err := s.Query(ctx, types.Filter{SearchText: "Liddell"}, 1, 10, "", "")
	require.NoError(t, err)
	require.Len(t, page.Data, 2)

	// SearchText ANDs with the rest of the predicate set.
	page, err = s.Query(ctx, types.Filter{SearchText: "Liddell", UserName: "bob"}, 1, 10, "", "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "bob", page.Data[0].UserName)
}
