package store

import (
	"testing"
	"time"

	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestSortColumnAllowlist(t *testing.T) {
	require.Equal(t, "followers", sortColumn("followers"))
	require.Equal(t, "last_login_at", sortColumn("last_login_at"))

	// Unknown identifiers fall back instead of reaching the SQL text.
	require.Equal(t, "user_name", sortColumn(""))
	require.Equal(t, "user_name", sortColumn("followers; DROP TABLE user_profiles"))
	require.Equal(t, "user_name", sortColumn("USER_NAME"))
}

func TestSortDirection(t *testing.T) {
	require.Equal(t, "DESC", sortDirection("DESC"))
	require.Equal(t, "DESC", sortDirection("desc"))
	require.Equal(t, "ASC", sortDirection("ASC"))
	require.Equal(t, "ASC", sortDirection(""))
	require.Equal(t, "ASC", sortDirection("sideways"))
}

func TestBuildWhereEmptyFilter(t *testing.T) {
	frag, args := buildWhere(types.Filter{}).Fragment()
	require.Empty(t, frag)
	require.Nil(t, args)
}

func TestBuildWhereFragment(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := types.Filter{
		UserName:     "ali",
		IsVerified:   boolPtr(false),
		MinFollowers: intPtr(10),
		City:         "Lisbon",
		CreatedAfter: timePtr(after),
	}

	frag, args := buildWhere(f).Fragment()
	require.Equal(t,
		"user_name LIKE ? AND is_verified = ? AND followers >= ? AND city = ? AND created_at >= ?",
		frag)
	require.Equal(t, []any{"%ali%", 0, 10, "Lisbon", "2024-01-01 00:00:00"}, args)
}

func TestBuildWhereSearchTextGroups(t *testing.T) {
	frag, args := buildWhere(types.Filter{SearchText: "smith", IsPrivate: boolPtr(true)}).Fragment()
	require.Equal(t, "is_private = ? AND (user_name LIKE ? OR full_name LIKE ?)", frag)
	require.Equal(t, []any{1, "%smith%", "%smith%"}, args)
}

func TestBuildWhereDateOnlyBounds(t *testing.T) {
	born := time.Date(1990, 6, 15, 23, 59, 0, 0, time.UTC)
	frag, args := buildWhere(types.Filter{BornBefore: timePtr(born)}).Fragment()
	require.Equal(t, "date_of_birth <= ?", frag)
	// Birth dates compare at day granularity.
	require.Equal(t, []any{"1990-06-15"}, args)
}
