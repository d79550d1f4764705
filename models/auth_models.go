package models

import "strings"

// LoginRequest is forwarded verbatim to the remote authentication endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity is the payload the remote authentication endpoint returns:
// the user's profile fields plus an opaque credential. The client never
// inspects the token.
type Identity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image"`
	Token     string `json:"token,omitempty"`
}

// Summary collapses the identity into the User shape embedded in posts.
func (i Identity) Summary() User {
	return User{
		ID:       i.ID,
		Name:     strings.TrimSpace(i.FirstName + " " + i.LastName),
		Username: i.Username,
		Image:    i.Image,
	}
}
