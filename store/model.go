package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/uptrace/bun"
)

const tableName = "user_profiles"

// Engine-native text encodings: timestamps carry no fractional seconds and no
// timezone suffix; date-only columns drop the time part entirely. Both sort
// lexicographically in chronological order.
const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

// userRow models the user_profiles row. Booleans are stored as 0/1 and
// timestamps as engine-native text.
type userRow struct {
	bun.BaseModel `bun:"table:user_profiles"`

	ID            int64          `bun:"id,pk,autoincrement"`
	ExternalID    int64          `bun:"external_id"`
	UserName      string         `bun:"user_name"`
	FullName      string         `bun:"full_name"`
	ProfileURL    string         `bun:"profile_url"`
	AvatarURL     string         `bun:"avatar_url"`
	IsVerified    int            `bun:"is_verified"`
	Posts         int            `bun:"posts"`
	Email         string         `bun:"email"`
	Phone         string         `bun:"phone"`
	Following     int            `bun:"following"`
	Followers     int            `bun:"followers"`
	Biography     string         `bun:"biography"`
	City          string         `bun:"city"`
	Address       string         `bun:"address"`
	IsPrivate     int            `bun:"is_private"`
	IsBusiness    int            `bun:"is_business"`
	ExternalURL   string         `bun:"external_url"`
	CategoryURL   string         `bun:"category_url"`
	FollowedByYou int            `bun:"followed_by_you"`
	CreatedAt     string         `bun:"created_at"`
	UpdatedAt     string         `bun:"updated_at"`
	LastLoginAt   sql.NullString `bun:"last_login_at"`
	DateOfBirth   sql.NullString `bun:"date_of_birth"`
}

func encodeTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func encodeDate(t time.Time) string { return t.UTC().Format(dateLayout) }

// decodeTime accepts both encodings. Values written by CURRENT_TIMESTAMP use
// the full layout as well.
func decodeTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: cannot decode time %q: %w", s, err)
	}
	return t, nil
}

func encodeOptional(t *time.Time, layout string) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(layout), Valid: true}
}

func decodeOptional(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := decodeTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fromDomain(user types.User) userRow {
	return userRow{
		ID:            user.ID,
		ExternalID:    user.ExternalID,
		UserName:      user.UserName,
		FullName:      user.FullName,
		ProfileURL:    user.ProfileURL,
		AvatarURL:     user.AvatarURL,
		IsVerified:    boolToInt(user.IsVerified),
		Posts:         user.Posts,
		Email:         user.Email,
		Phone:         user.Phone,
		Following:     user.Following,
		Followers:     user.Followers,
		Biography:     user.Biography,
		City:          user.City,
		Address:       user.Address,
		IsPrivate:     boolToInt(user.IsPrivate),
		IsBusiness:    boolToInt(user.IsBusiness),
		ExternalURL:   user.ExternalURL,
		CategoryURL:   user.CategoryURL,
		FollowedByYou: boolToInt(user.FollowedByYou),
		CreatedAt:     encodeTime(user.CreatedAt),
		UpdatedAt:     encodeTime(user.UpdatedAt),
		LastLoginAt:   encodeOptional(user.LastLoginAt, timeLayout),
		DateOfBirth:   encodeOptional(user.DateOfBirth, dateLayout),
	}
}

func toDomain(row userRow) (types.User, error) {
	createdAt, err := decodeTime(row.CreatedAt)
	if err != nil {
		return types.User{}, err
	}
	updatedAt, err := decodeTime(row.UpdatedAt)
	if err != nil {
		return types.User{}, err
	}
	lastLoginAt, err := decodeOptional(row.LastLoginAt)
	if err != nil {
		return types.User{}, err
	}
	dateOfBirth, err := decodeOptional(row.DateOfBirth)
	if err != nil {
		return types.User{}, err
	}
	return types.User{
		ID:            row.ID,
		ExternalID:    row.ExternalID,
		UserName:      row.UserName,
		FullName:      row.FullName,
		ProfileURL:    row.ProfileURL,
		AvatarURL:     row.AvatarURL,
		IsVerified:    row.IsVerified != 0,
		Posts:         row.Posts,
		Email:         row.Email,
		Phone:         row.Phone,
		Following:     row.Following,
		Followers:     row.Followers,
		Biography:     row.Biography,
		City:          row.City,
		Address:       row.Address,
		IsPrivate:     row.IsPrivate != 0,
		IsBusiness:    row.IsBusiness != 0,
		ExternalURL:   row.ExternalURL,
		CategoryURL:   row.CategoryURL,
		FollowedByYou: row.FollowedByYou != 0,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		LastLoginAt:   lastLoginAt,
		DateOfBirth:   dateOfBirth,
	}, nil
}

func toDomainSlice(rows []userRow) ([]types.User, error) {
	out := make([]types.User, 0, len(rows))
	for _, row := range rows {
		user, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, nil
}
