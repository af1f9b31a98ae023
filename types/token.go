package types

import "time"

// Token is an opaque bearer credential bound to exactly one user.
//
// Only a SHA-256 hash of the token secret is stored; the plaintext secret
// is returned to the client exactly once at login and cannot be recovered
// afterwards. A user may hold several live tokens at a time, one per
// session. Deleting a token revokes that session only.
type Token struct {
	// ID is the unique identifier of the token.
	ID int `json:"id" db:"id"`

	// UserID is the identifier of the user this token belongs to.
	UserID int `json:"user_id" db:"user_id"`

	// SecretHash is the hex-encoded SHA-256 hash of the token secret.
	// This field is never exposed in API responses.
	SecretHash string `json:"-" db:"secret_hash"`

	// CreatedAt is the timestamp when the token was issued.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
