package model

import "time"

// SessionToken is the authenticated BGG session: the cookie bundle returned
// by the login exchange plus its expiry. A token is shared by all requests
// that need private data and is never used past ExpiresAt.
type SessionToken struct {
	Cookies   map[string]string `json:"cookies"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Valid reports whether the token can still be used.
func (t *SessionToken) Valid() bool {
	return t != nil && len(t.Cookies) > 0 && time.Now().Before(t.ExpiresAt)
}
