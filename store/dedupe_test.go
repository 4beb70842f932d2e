package store

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestRemoveDuplicatesKeepsOldest(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	first := fixtureUser("alice")
	first.Biography = "original"
	firstID, err := s.Create(ctx, first)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second := fixtureUser("alice")
	second.Biography = "copy"
	_, err = s.Create(ctx, second)
	require.NoError(t, err)

	_, err = s.Create(ctx, fixtureUser("bob"))
	require.NoError(t, err)

	deleted, err := s.RemoveDuplicates(ctx, []string{"user_name"}, true)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	survivor, err := s.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, survivor)
	require.Equal(t, firstID, survivor.ID)
	require.Equal(t, "original", survivor.Biography)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestRemoveDuplicatesKeepsLowestID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	firstID, err := s.Create(ctx, fixtureUser("alice"))
	require.NoError(t, err)
	_, err = s.Create(ctx, fixtureUser("alice"))
	require.NoError(t, err)
	_, err = s.Create(ctx, fixtureUser("alice"))
	require.NoError(t, err)

	deleted, err := s.RemoveDuplicates(ctx, []string{"user_name"}, false)
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	survivor, err := s.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, firstID, survivor.ID)
}

func TestRemoveDuplicatesMultipleFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	a := fixtureUser("alice")
	b := fixtureUser("alice")
	b.Email = "other@example.com"
	_, err := s.Create(ctx, a)
	require.NoError(t, err)
	_, err = s.Create(ctx, b)
	require.NoError(t, err)

	// Differing emails split the group, so nothing is deleted.
	deleted, err := s.RemoveDuplicates(ctx, []string{"user_name", "email"}, true)
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func TestRemoveDuplicatesNullGroupValues(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	// Both last_login_at columns are NULL; NULL-safe comparison still pairs
	// them into one group.
	_, err := s.Create(ctx, fixtureUser("alice"))
	require.NoError(t, err)
	dupe := fixtureUser("alice")
	_, err = s.Create(ctx, dupe)
	require.NoError(t, err)

	deleted, err := s.RemoveDuplicates(ctx, []string{"user_name", "last_login_at"}, true)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
}

func TestRemoveDuplicatesValidatesFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.RemoveDuplicates(ctx, nil, true)
	require.Error(t, err)

	_, err = s.RemoveDuplicates(ctx, []string{"user_name; DROP TABLE user_profiles"}, true)
	require.Error(t, err)
	var gerr *goerrors.Error
	require.True(t, goerrors.As(err, &gerr))
	require.Equal(t, goerrors.CategoryValidation, gerr.Category)

	// Validation failures touch nothing.
	_, err = s.Create(ctx, fixtureUser("alice"))
	require.NoError(t, err)
	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
