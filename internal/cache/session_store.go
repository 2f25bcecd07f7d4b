package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bgg-mirror-api/internal/model"
)

// sessionKey is the static key the login session is stored under, so every
// process instance reuses the same session within its TTL.
const sessionKey = "bgg:session:cookies"

// SessionStore persists the authenticated BGG session token in a shared
// key-value backend.
type SessionStore struct {
	cache Cache
}

// NewSessionStore creates a session store on top of the given cache.
func NewSessionStore(c Cache) *SessionStore {
	return &SessionStore{cache: c}
}

// Get returns the stored session token, or nil when absent or expired.
func (s *SessionStore) Get(ctx context.Context) (*model.SessionToken, error) {
	data, err := s.cache.Get(ctx, sessionKey)
	if err == ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var token model.SessionToken
	if err := json.Unmarshal(data, &token); err != nil {
		// A corrupt entry just forces a fresh login.
		return nil, nil
	}
	if !token.Valid() {
		return nil, nil
	}
	return &token, nil
}

// Set stores the session token until its expiry.
func (s *SessionStore) Set(ctx context.Context, token *model.SessionToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refusing to store expired session")
	}
	if err := s.cache.Set(ctx, sessionKey, data, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete drops the stored session, forcing the next acquire to re-login.
func (s *SessionStore) Delete(ctx context.Context) error {
	return s.cache.Delete(ctx, sessionKey)
}
