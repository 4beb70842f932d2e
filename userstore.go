// Package userstore re-exports the record-store entry points so consumers
// can do `userstore.New(...)` without importing internal wiring helpers.
package userstore

import (
	"github.com/goliatone/go-userstore/pkg/types"
	"github.com/goliatone/go-userstore/store"
)

type (
	Store     = store.Store
	Config    = store.Config
	User      = types.User
	UserPatch = types.UserPatch
	Filter    = types.Filter
	Page      = types.Page
	Stats     = types.Stats
)

// New constructs a record store using the provided configuration.
func New(cfg Config) (*Store, error) {
	return store.New(cfg)
}
