package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	"bgg-mirror-api/internal/model"
)

// fingerprintKeyPrefix scopes all fingerprint keys. Keys never collide
// across kinds because the kind is part of the key.
const fingerprintKeyPrefix = "bgg:fp"

// Fingerprint is the pair of content hashes tracked per entity. Meta covers
// the list-level fields, Detail covers the detail payload. The two change
// independently because they come from different upstream calls.
type Fingerprint struct {
	Meta   string `json:"meta"`
	Detail string `json:"detail"`
}

// FingerprintStore persists one Fingerprint per (kind, id) pair in a
// key-value backend. When the backend is unreachable the store degrades to
// "always changed": Get reports every item as unknown so the sync re-fetches
// instead of silently skipping a real change.
type FingerprintStore struct {
	cache Cache
}

// NewFingerprintStore creates a fingerprint store on top of the given cache.
func NewFingerprintStore(c Cache) *FingerprintStore {
	return &FingerprintStore{cache: c}
}

func fingerprintKey(kind model.Kind, id int64) string {
	return fmt.Sprintf("%s:%s:%d", fingerprintKeyPrefix, kind, id)
}

// Get returns the stored fingerprint for (kind, id). found is false on a
// miss and on any backend error.
func (s *FingerprintStore) Get(ctx context.Context, kind model.Kind, id int64) (Fingerprint, bool) {
	data, err := s.cache.Get(ctx, fingerprintKey(kind, id))
	if err != nil {
		if err != ErrCacheMiss {
			log.Printf("[FingerprintStore] Get %s/%d failed, treating as changed: %v", kind, id, err)
		}
		return Fingerprint{}, false
	}

	var fp Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		log.Printf("[FingerprintStore] Corrupt fingerprint for %s/%d, treating as changed: %v", kind, id, err)
		return Fingerprint{}, false
	}
	return fp, true
}

// Set stores the fingerprint for (kind, id). Callers invoke this only after
// the corresponding durable write has committed.
func (s *FingerprintStore) Set(ctx context.Context, kind model.Kind, id int64, fp Fingerprint) error {
	data, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("failed to marshal fingerprint: %w", err)
	}
	if err := s.cache.Set(ctx, fingerprintKey(kind, id), data, 0); err != nil {
		return fmt.Errorf("failed to store fingerprint for %s/%d: %w", kind, id, err)
	}
	return nil
}

// Hash computes a stable hex digest of v. The value is marshaled to
// canonical JSON (encoding/json sorts map keys) and hashed with SHA-256, so
// equal field sets always produce equal digests.
func Hash(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only unmarshalable types end up here; hash the error text so the
		// item is treated as always-changed rather than always-equal.
		data = []byte(err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
