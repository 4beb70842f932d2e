package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goliatone/go-userstore/pkg/types"
)

var insertColumns = []string{
	"external_id", "user_name", "full_name", "profile_url", "avatar_url",
	"is_verified", "posts", "email", "phone", "following", "followers",
	"biography", "city", "address", "is_private", "is_business",
	"external_url", "category_url", "followed_by_you",
	"created_at", "updated_at", "last_login_at", "date_of_birth",
}

var insertSQL = "INSERT INTO " + tableName +
	" (" + strings.Join(insertColumns, ", ") + ")" +
	" VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(insertColumns)), ", ") + ")"

func nullableArg(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func insertArgs(row userRow) []any {
	return []any{
		row.ExternalID, row.UserName, row.FullName, row.ProfileURL, row.AvatarURL,
		row.IsVerified, row.Posts, row.Email, row.Phone, row.Following, row.Followers,
		row.Biography, row.City, row.Address, row.IsPrivate, row.IsBusiness,
		row.ExternalURL, row.CategoryURL, row.FollowedByYou,
		row.CreatedAt, row.UpdatedAt, nullableArg(row.LastLoginAt), nullableArg(row.DateOfBirth),
	}
}

// valuesByColumn maps insert columns back to their attempted values so the
// classifier can resolve an offending column.
func valuesByColumn(args []any) map[string]any {
	out := make(map[string]any, len(insertColumns))
	for i, col := range insertColumns {
		out[col] = args[i]
	}
	return out
}

// stampForInsert defaults zero timestamps to the current clock and keeps the
// creation-before-update invariant.
func (s *Store) stampForInsert(user types.User) types.User {
	now := s.clock.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() || user.UpdatedAt.Before(user.CreatedAt) {
		user.UpdatedAt = user.CreatedAt
	}
	return user
}

// Create inserts one record and returns the new identifier. Engine failures
// come back as classified error values rather than panics so batch-oriented
// callers can inspect and continue.
func (s *Store) Create(ctx context.Context, user types.User) (int64, error) {
	if s.db == nil {
		return 0, types.ErrNotInitialized
	}

	row := fromDomain(s.stampForInsert(user))
	args := insertArgs(row)
	s.logger.Debug("executing insert", "store", s.name, "sql", insertSQL)

	res, err := s.conn(ctx).ExecContext(ctx, insertSQL, args...)
	if err != nil {
		return 0, s.classify(err, insertSQL, args, valuesByColumn(args))
	}

	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		changes, _ := res.RowsAffected()
		return 0, insertWithoutID(insertSQL, args, changes)
	}
	return id, nil
}

// CreateMany inserts all records inside one transaction and returns the
// number of rows written. Any failure rolls the whole batch back and
// propagates classified.
func (s *Store) CreateMany(ctx context.Context, users []types.User) (int, error) {
	if s.db == nil {
		return 0, types.ErrNotInitialized
	}
	if len(users) == 0 {
		return 0, nil
	}

	count := 0
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		for _, user := range users {
			row := fromDomain(s.stampForInsert(user))
			args := insertArgs(row)
			res, err := s.conn(ctx).ExecContext(ctx, insertSQL, args...)
			if err != nil {
				return s.classify(err, insertSQL, args, valuesByColumn(args))
			}
			n, err := res.RowsAffected()
			if err != nil {
				return s.classify(err, insertSQL, args, nil)
			}
			count += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("batch insert committed", "store", s.name, "rows", count)
	return count, nil
}

// Get returns the record with the given identifier, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*types.User, error) {
	return s.getOne(ctx, "id = ?", id)
}

// GetByExternalID returns the record with the given external identifier, or
// nil when absent.
func (s *Store) GetByExternalID(ctx context.Context, externalID int64) (*types.User, error) {
	return s.getOne(ctx, "external_id = ?", externalID)
}

// GetByUserName returns the record with the given user name, or nil when
// absent.
func (s *Store) GetByUserName(ctx context.Context, userName string) (*types.User, error) {
	return s.getOne(ctx, "user_name = ?", userName)
}

func (s *Store) getOne(ctx context.Context, expr string, arg any) (*types.User, error) {
	if s.db == nil {
		return nil, types.ErrNotInitialized
	}
	row := new(userRow)
	err := s.conn(ctx).NewSelect().Model(row).Where(expr, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.classify(err, "SELECT FROM "+tableName+" WHERE "+expr, []any{arg}, nil)
	}
	user, err := toDomain(*row)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every record ordered by user name ascending.
func (s *Store) List(ctx context.Context) ([]types.User, error) {
	if s.db == nil {
		return nil, types.ErrNotInitialized
	}
	var rows []userRow
	err := s.conn(ctx).NewSelect().Model(&rows).OrderExpr("user_name ASC").Scan(ctx)
	if err != nil {
		return nil, s.classify(err, "SELECT FROM "+tableName+" ORDER BY user_name", nil, nil)
	}
	return toDomainSlice(rows)
}

// Update writes only the fields present in the patch, always refreshing the
// update timestamp, and reports whether a row was affected. An empty patch
// short-circuits without touching the engine. A non-nil zero time on
// LastLoginAt or DateOfBirth clears the column.
func (s *Store) Update(ctx context.Context, id int64, patch types.UserPatch) (bool, error) {
	if s.db == nil {
		return false, types.ErrNotInitialized
	}
	if patch.IsZero() {
		return false, nil
	}

	var sets []string
	var args []any
	set := func(expr string, arg any) {
		sets = append(sets, expr)
		args = append(args, arg)
	}

	if patch.ExternalID != nil {
		set("external_id = ?", *patch.ExternalID)
	}
	if patch.UserName != nil {
		set("user_name = ?", *patch.UserName)
	}
	if patch.FullName != nil {
		set("full_name = ?", *patch.FullName)
	}
	if patch.ProfileURL != nil {
		set("profile_url = ?", *patch.ProfileURL)
	}
	if patch.AvatarURL != nil {
		set("avatar_url = ?", *patch.AvatarURL)
	}
	if patch.Email != nil {
		set("email = ?", *patch.Email)
	}
	if patch.Phone != nil {
		set("phone = ?", *patch.Phone)
	}
	if patch.Biography != nil {
		set("biography = ?", *patch.Biography)
	}
	if patch.City != nil {
		set("city = ?", *patch.City)
	}
	if patch.Address != nil {
		set("address = ?", *patch.Address)
	}
	if patch.ExternalURL != nil {
		set("external_url = ?", *patch.ExternalURL)
	}
	if patch.CategoryURL != nil {
		set("category_url = ?", *patch.CategoryURL)
	}
	if patch.Posts != nil {
		set("posts = ?", *patch.Posts)
	}
	if patch.Following != nil {
		set("following = ?", *patch.Following)
	}
	if patch.Followers != nil {
		set("followers = ?", *patch.Followers)
	}
	if patch.IsVerified != nil {
		set("is_verified = ?", boolToInt(*patch.IsVerified))
	}
	if patch.IsPrivate != nil {
		set("is_private = ?", boolToInt(*patch.IsPrivate))
	}
	if patch.IsBusiness != nil {
		set("is_business = ?", boolToInt(*patch.IsBusiness))
	}
	if patch.FollowedByYou != nil {
		set("followed_by_you = ?", boolToInt(*patch.FollowedByYou))
	}
	if patch.LastLoginAt != nil {
		set("last_login_at = ?", nullableArg(encodeOptional(patch.LastLoginAt, timeLayout)))
	}
	if patch.DateOfBirth != nil {
		set("date_of_birth = ?", nullableArg(encodeOptional(patch.DateOfBirth, dateLayout)))
	}

	set("updated_at = ?", encodeTime(s.clock.Now()))
	args = append(args, id)

	sqlText := "UPDATE " + tableName + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.conn(ctx).ExecContext(ctx, sqlText, args...)
	if err != nil {
		return false, s.classify(err, sqlText, args, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.classify(err, sqlText, args, nil)
	}
	return n > 0, nil
}

// Delete removes one record by identifier and reports whether a row was
// affected. Identifiers are never reassigned to later records.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	if s.db == nil {
		return false, types.ErrNotInitialized
	}
	sqlText := "DELETE FROM " + tableName + " WHERE id = ?"
	res, err := s.conn(ctx).ExecContext(ctx, sqlText, id)
	if err != nil {
		return false, s.classify(err, sqlText, []any{id}, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.classify(err, sqlText, []any{id}, nil)
	}
	return n > 0, nil
}
