package bgg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bgg-mirror-api/internal/cache"
)

// newLoginServer returns a test server that accepts any credentials and
// counts logins.
func newLoginServer(t *testing.T, logins *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "SessionID", Value: "sess-token"})
		http.SetCookie(w, &http.Cookie{Name: "bggusername", Value: "tester"})
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionCacheAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("logs in and caches the token", func(t *testing.T) {
		var logins atomic.Int32
		srv := newLoginServer(t, &logins)

		sc := NewSessionCache(SessionConfig{
			Username: "tester",
			Password: "secret",
			LoginURL: srv.URL,
			TTL:      time.Hour,
		}, nil)

		token, err := sc.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if token.Cookies["SessionID"] != "sess-token" {
			t.Errorf("got cookies %v", token.Cookies)
		}

		if _, err := sc.Acquire(ctx); err != nil {
			t.Fatalf("second Acquire failed: %v", err)
		}
		if got := logins.Load(); got != 1 {
			t.Errorf("expected 1 login, got %d", got)
		}
	})

	t.Run("concurrent acquires produce one login", func(t *testing.T) {
		var logins atomic.Int32
		srv := newLoginServer(t, &logins)

		sc := NewSessionCache(SessionConfig{
			Username: "tester",
			Password: "secret",
			LoginURL: srv.URL,
			TTL:      time.Hour,
		}, nil)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := sc.Acquire(ctx); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("Acquire failed: %v", err)
		}

		if got := logins.Load(); got != 1 {
			t.Errorf("expected exactly 1 login, got %d", got)
		}
	})

	t.Run("missing credentials is an auth error", func(t *testing.T) {
		sc := NewSessionCache(SessionConfig{LoginURL: "http://127.0.0.1:0"}, nil)

		_, err := sc.Acquire(ctx)
		if !IsAuth(err) {
			t.Errorf("expected auth error, got %v", err)
		}
	})

	t.Run("rejected credentials is an auth error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		sc := NewSessionCache(SessionConfig{
			Username: "tester",
			Password: "wrong",
			LoginURL: srv.URL,
		}, nil)

		_, err := sc.Acquire(ctx)
		if !IsAuth(err) {
			t.Errorf("expected auth error, got %v", err)
		}
	})

	t.Run("missing session cookie is an auth error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sc := NewSessionCache(SessionConfig{
			Username: "tester",
			Password: "secret",
			LoginURL: srv.URL,
		}, nil)

		_, err := sc.Acquire(ctx)
		if !IsAuth(err) {
			t.Errorf("expected auth error, got %v", err)
		}
	})

	t.Run("reuses session persisted by another instance", func(t *testing.T) {
		var logins atomic.Int32
		srv := newLoginServer(t, &logins)
		store := cache.NewSessionStore(cache.NewMemoryCache())

		cfg := SessionConfig{
			Username: "tester",
			Password: "secret",
			LoginURL: srv.URL,
			TTL:      time.Hour,
		}

		first := NewSessionCache(cfg, store)
		if _, err := first.Acquire(ctx); err != nil {
			t.Fatalf("first Acquire failed: %v", err)
		}

		second := NewSessionCache(cfg, store)
		if _, err := second.Acquire(ctx); err != nil {
			t.Fatalf("second Acquire failed: %v", err)
		}

		if got := logins.Load(); got != 1 {
			t.Errorf("expected the second instance to reuse the session, got %d logins", got)
		}
	})

	t.Run("invalidate forces a fresh login", func(t *testing.T) {
		var logins atomic.Int32
		srv := newLoginServer(t, &logins)
		store := cache.NewSessionStore(cache.NewMemoryCache())

		sc := NewSessionCache(SessionConfig{
			Username: "tester",
			Password: "secret",
			LoginURL: srv.URL,
			TTL:      time.Hour,
		}, store)

		if _, err := sc.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		sc.Invalidate(ctx)
		if _, err := sc.Acquire(ctx); err != nil {
			t.Fatalf("Acquire after Invalidate failed: %v", err)
		}

		if got := logins.Load(); got != 2 {
			t.Errorf("expected 2 logins, got %d", got)
		}
	})
}
