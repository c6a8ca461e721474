// Package session carries the per-account state every orchestrator operation
// works on: the owner, the session key and the local store handle.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

// Session is created when an identity is established and dropped on logout.
// It is safe for concurrent use.
type Session struct {
	ownerID string
	keys    *KeyManager

	mu       sync.RWMutex
	store    store.LocalStore
	durable  store.LocalStore
	degraded atomic.Bool
	log      *logger.Logger
}

// New binds a session to ownerID, a key manager and the durable store.
func New(ownerID string, keys *KeyManager, local store.LocalStore, log *logger.Logger) *Session {
	return &Session{
		ownerID: ownerID,
		keys:    keys,
		store:   local,
		durable: local,
		log:     log.ForOwner(ownerID),
	}
}

func (s *Session) OwnerID() string { return s.ownerID }

func (s *Session) Keys() *KeyManager { return s.keys }

func (s *Session) Logger() *logger.Logger { return s.log }

// Store returns the store the session currently writes to.
func (s *Session) Store() store.LocalStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Durable returns the store the session was created with, even after
// Degrade swapped it out.
func (s *Session) Durable() store.LocalStore {
	return s.durable
}

// Degraded reports whether the session lost its durable store and keeps
// notes in memory only.
func (s *Session) Degraded() bool {
	return s.degraded.Load()
}

// Degrade switches the session to an in-memory store for the rest of its
// life. Only the first call swaps the store; later calls return the store
// already in use.
func (s *Session) Degrade() store.LocalStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded.CompareAndSwap(false, true) {
		s.log.Error().
			Str("func", "Session.Degrade").
			Msg("local store unavailable, keeping notes in memory for this session")
		s.store = store.NewMemoryStore()
	}
	return s.store
}
