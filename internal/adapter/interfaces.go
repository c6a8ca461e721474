// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the remote note store the sync engine replays
// mutations against.
//
// The primary abstraction is [RemoteStore], which decouples the service layer
// from the underlying protocol. Two implementations ship: an HTTP/REST client
// ([NewHTTPRemoteStore]) and a direct Postgres backend
// ([NewPostgresRemoteStore]).
//
// Transport failures are mapped to the sentinel values in errors.go so that
// callers can use [errors.Is] without knowing the protocol. Failures worth
// retrying additionally wrap [ErrTemporary]; see [IsRetryable].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the remote copy of every owner's encrypted notes. It only
// ever sees [models.CipherNote] values.
type RemoteStore interface {
	// SetToken stores the bearer token attached to subsequent requests.
	SetToken(token string)

	// Create stores a new note and returns the identifier the remote store
	// assigned to it.
	Create(ctx context.Context, ownerID string, note models.CipherNote) (string, error)

	// Update replaces the note with the given ID.
	Update(ctx context.Context, ownerID, noteID string, note models.CipherNote) error

	// Delete removes the note. It returns [ErrNotFound] (wrapped) when the
	// note does not exist.
	Delete(ctx context.Context, ownerID, noteID string) error

	// List returns all of the owner's notes, most recently updated first.
	List(ctx context.Context, ownerID string) ([]models.CipherNote, error)

	// Get returns [ErrNotFound] (wrapped) when the note does not exist.
	Get(ctx context.Context, ownerID, noteID string) (models.CipherNote, error)

	// GetSalt returns the owner's key derivation salt, or nil when none has
	// been stored yet.
	GetSalt(ctx context.Context, ownerID string) ([]byte, error)

	// SaveSalt stores the owner's key derivation salt.
	SaveSalt(ctx context.Context, ownerID string, salt []byte) error
}
