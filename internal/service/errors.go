package service

import (
	"errors"

	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

// Errors returned by the orchestrator. Storage and network failures are
// converted to these at the service boundary; callers match them with
// [errors.Is].
var (
	// ErrKeyUnavailable means no session key is held in memory or in the
	// session cache. The user has to unlock again.
	ErrKeyUnavailable = errors.New("session key is not available")

	ErrDecryption       = crypto.ErrDecryption
	ErrStoreUnavailable = store.ErrStoreUnavailable
	ErrNoteNotFound     = store.ErrNoteNotFound

	// ErrRemoteOperation wraps every failure reported by the remote store.
	// The adapter error stays in the chain.
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrValidation is returned for a note without title and content.
	ErrValidation = errors.New("note must have a title or content")

	ErrNoSession      = errors.New("no active session")
	ErrEmptyPassword  = errors.New("password is empty")
	ErrSaltConflict   = errors.New("local salt differs from the remote one")
	ErrInvalidPayload = errors.New("pending operation has no payload")
)
