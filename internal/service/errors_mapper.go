package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
)

// mapRemoteError tags an adapter failure with [ErrRemoteOperation], keeping
// the adapter sentinel (and [adapter.ErrTemporary]) in the chain.
func mapRemoteError(err error) error {
	if err == nil || errors.Is(err, ErrRemoteOperation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRemoteOperation, err)
}

// isRemoteNotFound reports whether the remote store does not know the note.
func isRemoteNotFound(err error) bool {
	return errors.Is(err, adapter.ErrNotFound)
}
