package store

import (
	"strings"

	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/uptrace/bun"
)

// columnAllowlist is the fixed set of column names that may ever be
// interpolated into SQL text (ORDER BY, dedup grouping). Identifiers cannot
// be parameterized, so dynamic identifiers come from here and nowhere else.
var columnAllowlist = map[string]struct{}{
	"id":              {},
	"external_id":     {},
	"user_name":       {},
	"full_name":       {},
	"profile_url":     {},
	"avatar_url":      {},
	"is_verified":     {},
	"posts":           {},
	"email":           {},
	"phone":           {},
	"following":       {},
	"followers":       {},
	"biography":       {},
	"city":            {},
	"address":         {},
	"is_private":      {},
	"is_business":     {},
	"external_url":    {},
	"category_url":    {},
	"followed_by_you": {},
	"created_at":      {},
	"updated_at":      {},
	"last_login_at":   {},
	"date_of_birth":   {},
}

const defaultSortColumn = "user_name"

// sortColumn validates a caller-supplied sort field against the column
// allow-list. Unknown fields silently fall back to the default sort column
// instead of failing the request; this closes the ORDER BY injection vector.
func sortColumn(field string) string {
	if _, ok := columnAllowlist[field]; ok {
		return field
	}
	return defaultSortColumn
}

// sortDirection normalizes the sort order to ASC/DESC, defaulting to ASC.
func sortDirection(order string) string {
	if strings.EqualFold(order, "DESC") {
		return "DESC"
	}
	return "ASC"
}

// condition is one WHERE predicate with its positional parameters.
type condition struct {
	expr string
	args []any
}

// whereClause is an ordered predicate list combined with AND. Both the raw
// Fragment form and the bun Apply form derive from the same conditions, so
// COUNT, data and statistics queries cannot drift apart.
type whereClause struct {
	conds []condition
}

func (w *whereClause) add(expr string, args ...any) {
	w.conds = append(w.conds, condition{expr: expr, args: args})
}

// Fragment returns the joined WHERE fragment (without the WHERE keyword,
// empty when no predicates) and the ordered parameter list matching its
// placeholders 1:1.
func (w whereClause) Fragment() (string, []any) {
	if len(w.conds) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(w.conds))
	var args []any
	for _, c := range w.conds {
		exprs = append(exprs, c.expr)
		args = append(args, c.args...)
	}
	return strings.Join(exprs, " AND "), args
}

// Apply chains every condition onto a bun select query.
func (w whereClause) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range w.conds {
		q = q.Where(c.expr, c.args...)
	}
	return q
}

// buildWhere translates a predicate set into conditions. Absent keys add no
// constraint; explicit booleans and zero-valued bounds are significant.
func buildWhere(f types.Filter) whereClause {
	var w whereClause

	if f.ID != nil {
		w.add("id = ?", *f.ID)
	}
	if f.ExternalID != nil {
		w.add("external_id = ?", *f.ExternalID)
	}
	if f.UserName != "" {
		w.add("user_name LIKE ?", "%"+f.UserName+"%")
	}
	if f.FullName != "" {
		w.add("full_name LIKE ?", "%"+f.FullName+"%")
	}
	if f.IsVerified != nil {
		w.add("is_verified = ?", boolToInt(*f.IsVerified))
	}
	if f.IsPrivate != nil {
		w.add("is_private = ?", boolToInt(*f.IsPrivate))
	}
	if f.IsBusiness != nil {
		w.add("is_business = ?", boolToInt(*f.IsBusiness))
	}
	if f.FollowedByYou != nil {
		w.add("followed_by_you = ?", boolToInt(*f.FollowedByYou))
	}
	if f.MinFollowers != nil {
		w.add("followers >= ?", *f.MinFollowers)
	}
	if f.MaxFollowers != nil {
		w.add("followers <= ?", *f.MaxFollowers)
	}
	if f.MinFollowing != nil {
		w.add("following >= ?", *f.MinFollowing)
	}
	if f.MaxFollowing != nil {
		w.add("following <= ?", *f.MaxFollowing)
	}
	if f.City != "" {
		w.add("city = ?", f.City)
	}
	if f.SearchText != "" {
		// Parenthesized so the OR group does not leak into the AND chain.
		pattern := "%" + f.SearchText + "%"
		w.add("(user_name LIKE ? OR full_name LIKE ?)", pattern, pattern)
	}
	if f.CreatedAfter != nil {
		w.add("created_at >= ?", encodeTime(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		w.add("created_at <= ?", encodeTime(*f.CreatedBefore))
	}
	if f.UpdatedAfter != nil {
		w.add("updated_at >= ?", encodeTime(*f.UpdatedAfter))
	}
	if f.UpdatedBefore != nil {
		w.add("updated_at <= ?", encodeTime(*f.UpdatedBefore))
	}
	if f.LastLoginAfter != nil {
		w.add("last_login_at >= ?", encodeTime(*f.LastLoginAfter))
	}
	if f.LastLoginBefore != nil {
		w.add("last_login_at <= ?", encodeTime(*f.LastLoginBefore))
	}
	if f.BornAfter != nil {
		w.add("date_of_birth >= ?", encodeDate(*f.BornAfter))
	}
	if f.BornBefore != nil {
		w.add("date_of_birth <= ?", encodeDate(*f.BornBefore))
	}

	return w
}
