// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered diary account.
//
// Identity is email + password. The email is the unique external identifier;
// we still generate our own internal string ID (xid) so primary keys are not
// tied to something the user might want to change later.
//
// PasswordHash holds the bcrypt hash of the password — NEVER the plaintext.
// The `json:"-"` tag makes absolutely sure the hash never leaks into an API
// response, even if a handler serialises the whole struct.
//
// Name defaults to the local part of the email ("anna@x.com" → "anna") when
// the user doesn't supply one at registration.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Name         string    `json:"name"      db:"name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
