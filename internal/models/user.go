// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"strings"
	"time"
	"unicode"
)

// User represents an account in the social graph.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Handle    string    `json:"handle,omitempty"`
	PhotoRef  string    `json:"photo_ref,omitempty"`
	Bio       string    `json:"bio"`
	Following []string  `json:"following"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultHandle derives a handle from a username: lowercased with all whitespace removed.
func DefaultHandle(username string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, username)
}

// EffectiveHandle returns the explicit handle, or the one derived from the username.
func (u *User) EffectiveHandle() string {
	if u.Handle != "" {
		return u.Handle
	}
	return DefaultHandle(u.Username)
}

// IsFollowing reports whether u follows userID.
func (u *User) IsFollowing(userID string) bool {
	return slices.Contains(u.Following, userID)
}

// ToggleFollowing flips membership of userID in the following set and
// returns the new state. A user can never follow themselves.
func (u *User) ToggleFollowing(userID string) bool {
	if userID == "" || userID == u.ID {
		return false
	}
	if i := slices.Index(u.Following, userID); i >= 0 {
		u.Following = slices.Delete(u.Following, i, i+1)
		return false
	}
	u.Following = append(u.Following, userID)
	return true
}

// Users is a snapshot of the users collection in store order.
type Users []*User

// ByID returns the user with the given id, or nil.
func (us Users) ByID(id string) *User {
	if id == "" {
		return nil
	}
	for _, u := range us {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// ByEmail returns the user whose email matches case-insensitively, or nil.
func (us Users) ByEmail(email string) *User {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	for _, u := range us {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// Followers returns the ids of users whose following set contains userID, in store order.
func (us Users) Followers(userID string) []string {
	var ids []string
	for _, u := range us {
		if u.ID != userID && u.IsFollowing(userID) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}
