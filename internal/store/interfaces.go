// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

// LocalStore is the durable on-device store: encrypted notes, the queue of
// mutations the remote store has not confirmed yet, and the per-account salt.
//
// Only [models.CipherNote] crosses this boundary, so plaintext never reaches
// disk. Every failure caused by the backing store being unusable wraps
// [ErrStoreUnavailable].
type LocalStore interface {
	// Put inserts the note or replaces the stored one with the same ID.
	Put(ctx context.Context, note models.CipherNote) error
	// Get returns [ErrNoteNotFound] when no note has the ID.
	Get(ctx context.Context, noteID string) (models.CipherNote, error)
	// ListByOwner returns the owner's notes, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.CipherNote, error)
	// Delete is a no-op for unknown IDs.
	Delete(ctx context.Context, noteID string) error

	// Enqueue appends op to the pending queue in a single statement and
	// returns the assigned ID. op.ID is ignored.
	Enqueue(ctx context.Context, op models.PendingOperation) (int64, error)
	// ListPending returns every queued operation in FIFO (ID) order.
	ListPending(ctx context.Context) ([]models.PendingOperation, error)
	// ListPendingByOwner returns the owner's queued operations in FIFO order.
	ListPendingByOwner(ctx context.Context, ownerID string) ([]models.PendingOperation, error)
	// HasPending reports whether any queued operation references noteID.
	HasPending(ctx context.Context, noteID string) (bool, error)
	// Dequeue removes exactly the operations with the given IDs; unknown IDs
	// are ignored.
	Dequeue(ctx context.Context, ids ...int64) error
	// RecordAttempt bumps the attempt counter of a queued operation and
	// stores the failure message.
	RecordAttempt(ctx context.Context, id int64, cause error) error

	// SaveSalt stores the owner's key derivation salt, replacing any previous
	// one.
	SaveSalt(ctx context.Context, ownerID string, salt []byte) error
	// GetSalt returns nil, nil when no salt is stored for the owner.
	GetSalt(ctx context.Context, ownerID string) ([]byte, error)

	// ReplaceNoteID rekeys a note and every queued operation referencing it
	// in one transaction. Used when the remote store assigns the permanent ID
	// of a note created on the device.
	ReplaceNoteID(ctx context.Context, oldID, newID string) error
	// WipeOwner removes the owner's notes, queued operations and salt in one
	// transaction. Either everything is removed or nothing is.
	WipeOwner(ctx context.Context, ownerID string) error

	Close() error
}

// SessionCache is a short-lived cache holding the derived session key so a
// restarted client does not prompt for the password again within the TTL.
type SessionCache interface {
	// Put stores key under the fixed session slot for ttl.
	Put(ctx context.Context, key []byte, ttl time.Duration) error
	// Get returns nil, nil when the slot is empty or expired.
	Get(ctx context.Context) ([]byte, error)
	// Clear empties the slot.
	Clear(ctx context.Context) error
}
