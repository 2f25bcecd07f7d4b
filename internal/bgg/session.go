package bgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"bgg-mirror-api/internal/cache"
	"bgg-mirror-api/internal/model"
)

// sessionCookie is the cookie BGG sets on a successful login; without it
// private endpoints answer as anonymous.
const sessionCookie = "SessionID"

// SessionCache owns the authenticated BGG session. Acquire returns a valid
// token, logging in when the cached one is absent or expired. The refresh
// path is serialized: concurrent callers during a refresh wait on the mutex
// and then reuse the token the first caller obtained, so N concurrent
// acquires produce exactly one login.
//
// Tokens are persisted in a shared SessionStore so multiple process
// instances reuse one session within its TTL. When the store is unreachable
// the cache keeps an in-process copy only and logs a warning.
type SessionCache struct {
	mu    sync.Mutex
	token *model.SessionToken

	store      *cache.SessionStore
	httpClient *http.Client

	username  string
	password  string
	loginURL  string
	userAgent string
	ttl       time.Duration
}

// SessionConfig holds the settings for a SessionCache.
type SessionConfig struct {
	Username  string
	Password  string
	LoginURL  string
	UserAgent string
	TTL       time.Duration
	Timeout   time.Duration
}

// NewSessionCache creates a session cache. store may be nil; the cache then
// runs in-process only.
func NewSessionCache(cfg SessionConfig, store *cache.SessionStore) *SessionCache {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &SessionCache{
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		username:   cfg.Username,
		password:   cfg.Password,
		loginURL:   cfg.LoginURL,
		userAgent:  cfg.UserAgent,
		ttl:        ttl,
	}
}

// Acquire returns a valid, non-expired session token, transparently logging
// in if needed. Returns an AuthError when credentials are missing or the
// upstream rejects them.
func (s *SessionCache) Acquire(ctx context.Context) (*model.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token, nil
	}
	s.token = nil

	// Another instance may have logged in already.
	if s.store != nil {
		token, err := s.store.Get(ctx)
		if err != nil {
			log.Printf("[SessionCache] Warning: session store unavailable, using in-process session only: %v", err)
		} else if token.Valid() {
			s.token = token
			return token, nil
		}
	}

	token, err := s.login(ctx)
	if err != nil {
		return nil, err
	}
	s.token = token

	if s.store != nil {
		if err := s.store.Set(ctx, token); err != nil {
			log.Printf("[SessionCache] Warning: failed to persist session, keeping in-process copy: %v", err)
		}
	}

	return token, nil
}

// Invalidate drops the cached token and its persisted copy, forcing the
// next Acquire to log in again. Used after the upstream rejects a session.
func (s *SessionCache) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	if s.store != nil {
		if err := s.store.Delete(ctx); err != nil {
			log.Printf("[SessionCache] Warning: failed to clear persisted session: %v", err)
		}
	}
}

// login performs the credential exchange and extracts the cookie bundle.
func (s *SessionCache) login(ctx context.Context) (*model.SessionToken, error) {
	if s.username == "" || s.password == "" {
		return nil, &AuthError{Err: fmt.Errorf("BGG_USERNAME / BGG_PASSWORD are required for private data")}
	}

	payload := map[string]any{
		"credentials": map[string]string{
			"username": s.username,
			"password": s.password,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("login request failed: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, &AuthError{Err: fmt.Errorf("login rejected: HTTP %d", resp.StatusCode)}
	}

	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		if c.Value != "" {
			cookies[c.Name] = c.Value
		}
	}
	if _, ok := cookies[sessionCookie]; !ok {
		return nil, &AuthError{Err: fmt.Errorf("login succeeded but %s cookie missing", sessionCookie)}
	}

	token := &model.SessionToken{
		Cookies:   cookies,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	log.Printf("[SessionCache] Logged in to BGG, session valid until %s", token.ExpiresAt.Format(time.RFC3339))
	return token, nil
}
