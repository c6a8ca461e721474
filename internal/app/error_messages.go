// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the user-facing wording of the client. Command output and
// error reporting go through it so the same failure is always described the
// same way.
package app

import (
	"errors"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/identity"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
)

const (
	// MsgNotSignedIn is shown when no access token is configured.
	MsgNotSignedIn = "not signed in: set APP_TOKEN or pass --token"

	// MsgWrongPassword is shown when the derived key opens none of the
	// local notes.
	MsgWrongPassword = "wrong password"

	// MsgEmptyPassword is shown when the prompt was answered with nothing.
	MsgEmptyPassword = "password must not be empty"

	// MsgLocked is shown when a command needs the session key and none is
	// held or cached.
	MsgLocked = "session is locked: run a command interactively to enter the password"

	MsgNoteNotFound = "note not found"

	// MsgEmptyNote is shown for a create or update without title and content.
	MsgEmptyNote = "a note needs a title or some content"

	// MsgInvalidNote covers the other input rules (length, tags); the
	// detail line says which one.
	MsgInvalidNote = "invalid note"

	// MsgStoreUnavailable is shown when the local database cannot be used.
	MsgStoreUnavailable = "local database unavailable"

	// MsgRemoteRejected is shown when the remote store refused a request for
	// a reason retrying will not fix.
	MsgRemoteRejected = "remote store rejected the request"

	// MsgRemoteUnreachable is shown when the remote store could not be
	// reached; the change stays queued.
	MsgRemoteUnreachable = "remote store unreachable, changes stay queued"

	MsgUnauthorized = "access token rejected by the remote store"

	MsgSaltConflict = "this device's key salt differs from the account's; log out and unlock again"

	MsgInvalidToken = "access token is malformed"

	MsgInvalidConfig = "invalid configuration"

	// MsgInternalError covers everything not listed above.
	MsgInternalError = "unexpected error"
)

// ErrNotSignedIn is returned by commands that need an identity when no
// token is configured.
var ErrNotSignedIn = errors.New("not signed in")

var messages = []struct {
	target error
	msg    string
}{
	{ErrNotSignedIn, MsgNotSignedIn},
	{identity.ErrInvalidToken, MsgInvalidToken},
	{service.ErrEmptyPassword, MsgEmptyPassword},
	{service.ErrKeyUnavailable, MsgLocked},
	{service.ErrNoteNotFound, MsgNoteNotFound},
	{validators.ErrEmptyNote, MsgEmptyNote},
	{service.ErrValidation, MsgInvalidNote},
	{service.ErrSaltConflict, MsgSaltConflict},
	{service.ErrDecryption, MsgWrongPassword},
	{service.ErrStoreUnavailable, MsgStoreUnavailable},
	{adapter.ErrUnauthorized, MsgUnauthorized},
	{adapter.ErrTemporary, MsgRemoteUnreachable},
	{service.ErrRemoteOperation, MsgRemoteRejected},
	{config.ErrInvalidStorageConfigs, MsgInvalidConfig},
	{config.ErrInvalidAdapterConfigs, MsgInvalidConfig},
	{config.ErrInvalidWorkerConfigs, MsgInvalidConfig},
	{config.ErrInvalidRetryConfigs, MsgInvalidConfig},
	{config.ErrInvalidSessionConfigs, MsgInvalidConfig},
}

// UserMessage maps err to the sentence shown to the user. The first match in
// the table wins, so more specific errors are listed first.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return MsgInternalError
}
