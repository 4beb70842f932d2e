package types

import (
	"errors"
	"time"
)

var (
	// ErrNotInitialized occurs when an operation runs before Initialize or
	// after Close.
	ErrNotInitialized = errors.New("go-userstore: store not initialized")
	// ErrStoreNameRequired occurs when a store is constructed without a name.
	ErrStoreNameRequired = errors.New("go-userstore: store name required")
	// ErrBlobStoreRequired occurs when a store is constructed without a
	// snapshot backend.
	ErrBlobStoreRequired = errors.New("go-userstore: blob store required")
)

// User is one user-profile record. ID is assigned by the engine on create,
// is unique, and is never reused after deletion. ExternalID is the
// caller-supplied upstream identifier and defaults to 0.
type User struct {
	ID            int64
	ExternalID    int64
	UserName      string
	FullName      string
	ProfileURL    string
	AvatarURL     string
	Email         string
	Phone         string
	Biography     string
	City          string
	Address       string
	ExternalURL   string
	CategoryURL   string
	Posts         int
	Following     int
	Followers     int
	IsVerified    bool
	IsPrivate     bool
	IsBusiness    bool
	FollowedByYou bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
	DateOfBirth   *time.Time
}

// Filter collects the predicate set accepted by Query and Statistics. A nil
// pointer or empty string means "no constraint"; explicit false and zero
// values are significant, which is why booleans and numeric bounds are
// pointers.
type Filter struct {
	ID         *int64
	ExternalID *int64

	// UserName and FullName match as substrings; City matches exactly.
	UserName string
	FullName string
	City     string

	// SearchText matches as a substring against user_name OR full_name.
	SearchText string

	IsVerified    *bool
	IsPrivate     *bool
	IsBusiness    *bool
	FollowedByYou *bool

	MinFollowers *int
	MaxFollowers *int
	MinFollowing *int
	MaxFollowing *int

	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	UpdatedAfter    *time.Time
	UpdatedBefore   *time.Time
	LastLoginAfter  *time.Time
	LastLoginBefore *time.Time
	BornAfter       *time.Time
	BornBefore      *time.Time
}

// IsZero reports whether the filter carries no constraints.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// UserPatch is a partial update: only non-nil fields are written. The
// identifier and the creation timestamp are immutable; the update timestamp
// is refreshed by the store on every successful update.
type UserPatch struct {
	ExternalID    *int64
	UserName      *string
	FullName      *string
	ProfileURL    *string
	AvatarURL     *string
	Email         *string
	Phone         *string
	Biography     *string
	City          *string
	Address       *string
	ExternalURL   *string
	CategoryURL   *string
	Posts         *int
	Following     *int
	Followers     *int
	IsVerified    *bool
	IsPrivate     *bool
	IsBusiness    *bool
	FollowedByYou *bool
	LastLoginAt   *time.Time
	DateOfBirth   *time.Time
}

// IsZero reports whether the patch carries no fields.
func (p UserPatch) IsZero() bool {
	return p == UserPatch{}
}

// Page is one window of a predicate-filtered result set. Total counts the
// whole filtered set, not just this window.
type Page struct {
	Data       []User
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Stats aggregates counters over a predicate-filtered set. ActiveToday counts
// records whose last login falls within the current day; NewThisWeek counts
// records created within the trailing 7 days.
type Stats struct {
	Total         int
	VerifiedCount int
	BusinessCount int
	AvgFollowers  float64
	MaxFollowers  int
	MinFollowers  int
	ActiveToday   int
	NewThisWeek   int
}

// Clock abstracts time so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Logger captures basic logging hooks used by the store.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}
