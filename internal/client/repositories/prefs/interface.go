// Package prefs persists small client preferences (bearer token, selected
// language) in the local database.
package prefs

import "context"

// Well-known preference keys.
const (
	KeyToken    = "token"
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyLanguage = "language"
)

// Repository is a durable key/value store for client preferences.
//
// Get returns "" (no error) for a missing key. Set upserts. SetMany upserts
// all values in a single transaction, so related keys (token and user
// identity) never end up half-written. Delete and Clear are idempotent.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
