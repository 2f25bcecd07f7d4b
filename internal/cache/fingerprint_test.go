package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bgg-mirror-api/internal/model"
)

// failingCache simulates an unreachable backend.
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCache) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func TestHash(t *testing.T) {
	t.Run("equal field sets produce equal digests", func(t *testing.T) {
		a := map[string]any{"name": "Brass", "year": 2018, "rank": 1}
		b := map[string]any{"rank": 1, "year": 2018, "name": "Brass"}

		if Hash(a) != Hash(b) {
			t.Errorf("expected equal hashes, got %s and %s", Hash(a), Hash(b))
		}
	})

	t.Run("different values produce different digests", func(t *testing.T) {
		a := map[string]any{"name": "Brass", "num_plays": 3}
		b := map[string]any{"name": "Brass", "num_plays": 4}

		if Hash(a) == Hash(b) {
			t.Error("expected different hashes for different values")
		}
	})

	t.Run("nil pointer and zero value differ", func(t *testing.T) {
		var rating *float64
		zero := 0.0

		a := map[string]any{"rating": rating}
		b := map[string]any{"rating": &zero}

		if Hash(a) == Hash(b) {
			t.Error("expected nil rating and zero rating to hash differently")
		}
	})

	t.Run("stable across calls", func(t *testing.T) {
		v := map[string]any{"mechanics": []string{"Auction", "Network Building"}}
		first := Hash(v)
		for i := 0; i < 10; i++ {
			if got := Hash(v); got != first {
				t.Fatalf("hash changed between calls: %s vs %s", first, got)
			}
		}
	})
}

func TestFingerprintStore(t *testing.T) {
	ctx := context.Background()

	t.Run("miss reports not found", func(t *testing.T) {
		store := NewFingerprintStore(NewMemoryCache())

		if _, found := store.Get(ctx, model.KindGame, 174430); found {
			t.Error("expected miss for unknown id")
		}
	})

	t.Run("set then get roundtrip", func(t *testing.T) {
		store := NewFingerprintStore(NewMemoryCache())
		fp := Fingerprint{Meta: "abc", Detail: "def"}

		if err := store.Set(ctx, model.KindGame, 174430, fp); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		got, found := store.Get(ctx, model.KindGame, 174430)
		if !found {
			t.Fatal("expected fingerprint to be found")
		}
		if got != fp {
			t.Errorf("got %+v, want %+v", got, fp)
		}
	})

	t.Run("kinds do not collide", func(t *testing.T) {
		store := NewFingerprintStore(NewMemoryCache())

		if err := store.Set(ctx, model.KindGame, 7, Fingerprint{Meta: "game"}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if _, found := store.Get(ctx, model.KindAccessory, 7); found {
			t.Error("fingerprint leaked across kinds")
		}
	})

	t.Run("backend failure degrades to not found", func(t *testing.T) {
		store := NewFingerprintStore(failingCache{})

		if _, found := store.Get(ctx, model.KindGame, 1); found {
			t.Error("expected degraded Get to report not found")
		}
		if err := store.Set(ctx, model.KindGame, 1, Fingerprint{Meta: "x"}); err == nil {
			t.Error("expected Set to surface the backend error")
		}
	})

	t.Run("corrupt entry treated as changed", func(t *testing.T) {
		mem := NewMemoryCache()
		store := NewFingerprintStore(mem)

		if err := mem.Set(ctx, fingerprintKey(model.KindGame, 9), []byte("{not json"), 0); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if _, found := store.Get(ctx, model.KindGame, 9); found {
			t.Error("expected corrupt fingerprint to report not found")
		}
	})
}
