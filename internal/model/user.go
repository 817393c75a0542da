// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// We use Google sign-in as the identity provider, so the primary external
// identifier is the Google account ID (the "sub" of the userinfo response).
// We still generate our own internal string ID (xid) for consistency with
// the other entities and to avoid tying our primary keys to a third-party's
// numbering scheme.
//
// Users are created by the auth flow and treated as immutable by the pool
// and guess logic — nothing in this codebase mutates a User outside of the
// login upsert.
type User struct {
	ID        string    `json:"id"`
	GoogleID  string    `json:"-"`         // Google's stable account ID, never exposed
	Name      string    `json:"name"`      // Display name from the Google profile
	Email     string    `json:"email"`     // Primary email (may be empty if not shared)
	AvatarURL string    `json:"avatarUrl"` // Profile picture URL
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
