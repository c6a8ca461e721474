package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

// KeyManager holds the derived session key in volatile memory. When the
// in-memory copy is gone (e.g. after a restart) it falls back to the
// short-lived session cache.
type KeyManager struct {
	mu    sync.RWMutex
	key   []byte
	cache store.SessionCache
	ttl   time.Duration
	log   *logger.Logger
}

// NewKeyManager creates a key manager. cache may be nil.
func NewKeyManager(cache store.SessionCache, ttl time.Duration, log *logger.Logger) *KeyManager {
	return &KeyManager{
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// SetKey replaces the session key and refreshes the cached copy. A cache
// failure only costs the user a password prompt after a restart, so it is
// logged and not returned.
func (k *KeyManager) SetKey(ctx context.Context, key []byte) {
	k.mu.Lock()
	clear(k.key)
	k.key = slices.Clone(key)
	k.mu.Unlock()

	if k.cache == nil {
		return
	}
	if err := k.cache.Put(ctx, key, k.ttl); err != nil {
		k.log.Warn().Err(err).Str("func", "KeyManager.SetKey").Msg("failed to cache session key")
	}
}

// GetKey returns a copy of the session key. ok is false when no key is held
// in memory or in the cache; callers turn that into a key-unavailable error.
func (k *KeyManager) GetKey(ctx context.Context) (key []byte, ok bool) {
	k.mu.RLock()
	if k.key != nil {
		key = slices.Clone(k.key)
	}
	k.mu.RUnlock()
	if key != nil {
		return key, true
	}

	if k.cache == nil {
		return nil, false
	}

	cached, err := k.cache.Get(ctx)
	if err != nil {
		k.log.Warn().Err(err).Str("func", "KeyManager.GetKey").Msg("failed to read cached session key")
		return nil, false
	}
	if cached == nil {
		return nil, false
	}

	k.mu.Lock()
	if k.key == nil {
		k.key = slices.Clone(cached)
	}
	k.mu.Unlock()

	return cached, true
}

// ClearKey zeroes the in-memory key and empties the cache slot.
func (k *KeyManager) ClearKey(ctx context.Context) error {
	k.mu.Lock()
	clear(k.key)
	k.key = nil
	k.mu.Unlock()

	if k.cache == nil {
		return nil
	}
	return k.cache.Clear(ctx)
}
