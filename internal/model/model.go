// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account stored on the server. The password hash never
// leaves the server.
type User struct {
	ID           int64
	Username     string // unique
	Email        string
	PasswordHash string // PHC-encoded argon2id
	CreatedAt    time.Time
}

// Post is a single blog entry. AuthorID is fixed at creation and never
// reassigned.
type Post struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64 // FK -> users.id
	CreatedAt time.Time
	UpdatedAt time.Time // refreshed on every successful update
}

// PostPatch is a partial update intent. A nil field leaves the stored value
// untouched.
type PostPatch struct {
	Title   *string
	Content *string
}

// Empty reports whether the patch changes no field.
func (p PostPatch) Empty() bool { return p.Title == nil && p.Content == nil }

// AuthResult collects a freshly issued session token and the account it
// belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time // token expiry (for diagnostics)
	User      User
}
