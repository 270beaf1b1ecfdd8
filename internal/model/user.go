// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Identifiable is implemented by anything that can own a session.
//
// WHY AN INTERFACE?
// The session layer (internal/auth) only needs a numeric identity to put in the
// token subject. Depending on this one-method interface instead of *User keeps
// auth free of any knowledge about what a user record looks like.
type Identifiable interface {
	Identity() int64
}

// User represents a registered account.
//
// PasswordHash is never serialised to JSON (the "-" tag) — it should never
// leave the server, not even by accident in a debug endpoint.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"` // unique, compared case-sensitively
	PasswordHash string    `json:"-"         db:"password"`
	Name         string    `json:"name"      db:"name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Identity returns the user's primary key. Implements Identifiable.
func (u *User) Identity() int64 {
	return u.ID
}

// GravatarURL returns the user's avatar image URL at the given pixel size.
//
// Gravatar keys avatars by the MD5 of the trimmed, lower-cased email.
// Rating "g" and the "retro" fallback match what the pages have always shown.
func (u *User) GravatarURL(size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&r=g&d=retro",
		hex.EncodeToString(sum[:]), size)
}
