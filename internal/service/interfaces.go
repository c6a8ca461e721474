// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/models"
)

// NoteService is the note API of the orchestrator. Every mutation is
// encrypted and written locally first; when the remote store is reachable
// and the note has no queued operations it is mirrored right away,
// otherwise it is queued for the next drain.
type NoteService interface {
	// Create stores a new note under a local ID. If the remote store accepts
	// it in the same call, the returned note already carries the remote ID
	// and is synced.
	// Returns ErrValidation, ErrKeyUnavailable or ErrStoreUnavailable.
	Create(ctx context.Context, sess *session.Session, input models.NoteInput) (models.PlainNote, error)

	// Update replaces title, content and tags of an existing note.
	// Returns ErrNoteNotFound for unknown IDs.
	Update(ctx context.Context, sess *session.Session, noteID string, input models.NoteInput) (models.PlainNote, error)

	// Delete removes the note locally and remotely (now or on the next drain).
	Delete(ctx context.Context, sess *session.Session, noteID string) error

	// Get decrypts a single note from the local store.
	Get(ctx context.Context, sess *session.Session, noteID string) (models.PlainNote, error)

	// LoadNotes returns the owner's notes, most recently updated first. When
	// offline is false the remote list is merged into the local store first.
	// A note that cannot be decrypted comes back with DecryptionFailed set
	// instead of failing the whole call.
	LoadNotes(ctx context.Context, sess *session.Session, offline bool) ([]models.PlainNote, error)
}

// SyncService drains the pending-operation queue.
type SyncService interface {
	// SyncWithRemote replays the owner's queued operations in FIFO order and
	// removes the ones the remote store accepted. After a drain without
	// failures the local store is refreshed from the remote list.
	// A second call for the same owner while one is running joins it.
	SyncWithRemote(ctx context.Context, sess *session.Session) (models.SyncReport, error)

	// PendingCount returns the number of operations waiting for the owner.
	PendingCount(ctx context.Context, sess *session.Session) (int, error)
}

// KeyService turns a password into the session key and tears the session
// down on logout.
type KeyService interface {
	// Unlock derives the session key from password with the owner's salt
	// (local, then remote, generated when neither exists) and hands it to
	// the session's key manager.
	Unlock(ctx context.Context, sess *session.Session, password string, online bool) error

	// Logout clears the session key and atomically wipes the owner's local
	// notes, queue and salt.
	Logout(ctx context.Context, sess *session.Session) error
}

// Connectivity reports whether the remote store is currently reachable.
type Connectivity interface {
	Online() bool
	// ReportFailure lets callers flag a temporary remote failure so later
	// mutations are queued without waiting for the next probe.
	ReportFailure(err error)
}
