// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// LocalIDPrefix marks note identifiers generated on the device. Such IDs are
// replaced by the remote-assigned identifier once the note has been synced.
const LocalIDPrefix = "local-"

// UndecryptablePlaceholder is shown instead of the title and content of a
// note whose envelopes could not be opened with the session key.
const UndecryptablePlaceholder = "[this note could not be decrypted]"

// SyncStatus tells whether the remote store has confirmed the latest local
// state of a note.
type SyncStatus string

const (
	// SyncStatusSynced means the remote store holds the same state as the
	// local one.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusPending means at least one mutation of the note is still
	// waiting in the pending-operation queue.
	SyncStatusPending SyncStatus = "pending"
)

// Envelope is the serialized ciphertext of a single note field:
// base64(nonce || ciphertext). Opening it requires the exact session key that
// sealed it.
type Envelope string

// NoteMeta holds the fields that are never encrypted. They stay readable to
// the local store for querying and ordering.
type NoteMeta struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	SyncStatus SyncStatus `json:"sync_status"`
}

// IsLocalID reports whether the note still carries a device-generated ID.
func (m NoteMeta) IsLocalID() bool {
	return strings.HasPrefix(m.ID, LocalIDPrefix)
}

// NoteRecord is either a [PlainNote] or a [CipherNote]. The set of
// implementations is closed: the unexported marker method keeps other
// packages from adding variants, so the encrypted/plaintext distinction is a
// property of the static type rather than a runtime flag.
type NoteRecord interface {
	Meta() NoteMeta
	noteRecord()
}

// PlainNote is the decrypted, in-memory form of a note handed to the
// presentation layer. It is never written to the durable store.
type PlainNote struct {
	NoteMeta

	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`

	// DecryptionFailed is set when the note was loaded but its envelopes
	// could not be opened; Title and Content then hold
	// [UndecryptablePlaceholder].
	DecryptionFailed bool `json:"decryption_error,omitempty"`
}

// Meta implements [NoteRecord].
func (n PlainNote) Meta() NoteMeta { return n.NoteMeta }

func (PlainNote) noteRecord() {}

// CipherNote is the encrypted form of a note: the only shape accepted by the
// local store and sent to the remote store.
type CipherNote struct {
	NoteMeta

	Title   Envelope `json:"title"`
	Content Envelope `json:"content"`
	Tags    Envelope `json:"tags"`
}

// Meta implements [NoteRecord].
func (n CipherNote) Meta() NoteMeta { return n.NoteMeta }

func (CipherNote) noteRecord() {}

// NoteInput carries the user-editable fields of a note for create and update.
type NoteInput struct {
	Title   string
	Content string
	Tags    []string
}

// IsEmpty reports whether the input has neither a title nor content.
func (in NoteInput) IsEmpty() bool {
	return strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Content) == ""
}
