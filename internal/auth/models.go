package auth

import (
	"time"
)

// Identity is the authenticated principal attached to a request after a
// successful OAuth handshake. Username is always present; the rest is
// whatever the provider supplied.
type Identity struct {
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider"`
}

// Session is a server-side session record keyed by a random id. The client
// only ever holds a signed token embedding the id.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
