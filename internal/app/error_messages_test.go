package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not signed in", err: ErrNotSignedIn, want: MsgNotSignedIn},
		{name: "empty note", err: fmt.Errorf("%w: %w", service.ErrValidation, validators.ErrEmptyNote), want: MsgEmptyNote},
		{name: "bad tag", err: fmt.Errorf("%w: %w", service.ErrValidation, validators.ErrInvalidTag), want: MsgInvalidNote},
		{name: "wrong password", err: fmt.Errorf("wrong password: %w", service.ErrDecryption), want: MsgWrongPassword},
		{name: "locked", err: service.ErrKeyUnavailable, want: MsgLocked},
		{name: "missing note", err: fmt.Errorf("load note x: %w", service.ErrNoteNotFound), want: MsgNoteNotFound},
		{name: "unauthorized beats generic remote", err: fmt.Errorf("%w: %w", service.ErrRemoteOperation, adapter.ErrUnauthorized), want: MsgUnauthorized},
		{name: "remote rejected", err: fmt.Errorf("%w: %w", service.ErrRemoteOperation, adapter.ErrConflict), want: MsgRemoteRejected},
		{name: "remote down", err: fmt.Errorf("%w: %w", service.ErrRemoteOperation, adapter.ErrTemporary), want: MsgRemoteUnreachable},
		{name: "store", err: fmt.Errorf("put: %w", service.ErrStoreUnavailable), want: MsgStoreUnavailable},
		{name: "config", err: config.ErrInvalidRetryConfigs, want: MsgInvalidConfig},
		{name: "unknown", err: errors.New("boom"), want: MsgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
