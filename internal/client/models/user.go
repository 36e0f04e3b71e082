// Package models defines client-side data models shared by the session store,
// the API client, and the notification channel.
package models

// User is the authenticated account as returned by the platform API.
// It is owned by the session store: replaced wholesale on login, merged
// field-by-field via UserPatch, and destroyed on logout.
type User struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	IsEmailVerified bool     `json:"isEmailVerified"`
	RoleIDs         []string `json:"roleIds"`
}

// Clone returns a deep copy so callers can hand snapshots out without
// exposing the store's internal slice.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.RoleIDs = append([]string(nil), u.RoleIDs...)
	return &c
}

// UserPatch is a partial update applied to the current user. Nil fields are
// left untouched.
type UserPatch struct {
	Username        *string
	Email           *string
	IsEmailVerified *bool
	RoleIDs         []string
}

// Apply merges the patch into u in place.
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsEmailVerified != nil {
		u.IsEmailVerified = *p.IsEmailVerified
	}
	if p.RoleIDs != nil {
		u.RoleIDs = append([]string(nil), p.RoleIDs...)
	}
}

// Role is read-only reference data sourced from the platform's role registry.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
