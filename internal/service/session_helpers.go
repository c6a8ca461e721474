package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/metrics"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

func requireKey(ctx context.Context, sess *session.Session) ([]byte, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	key, ok := sess.Keys().GetKey(ctx)
	if !ok {
		return nil, ErrKeyUnavailable
	}
	return key, nil
}

// writeLocal runs a store write. If the durable store is unavailable the
// session switches to the in-memory store and the write is retried once
// there. Reads never take this path.
func writeLocal(ctx context.Context, sess *session.Session, write func(store.LocalStore) error) error {
	err := write(sess.Store())
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrStoreUnavailable) || sess.Degraded() {
		return fmt.Errorf("local write: %w", err)
	}

	sess.Logger().Err(err).Str("func", "writeLocal").Msg("local store unavailable, degrading session")
	mem := sess.Degrade()
	metrics.IncrementStoreDegraded()

	if err = write(mem); err != nil {
		return fmt.Errorf("%w: local write after degrade: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// decryptOrPlaceholder never fails: a note that cannot be opened is returned
// with its metadata and a placeholder body.
func decryptOrPlaceholder(codec crypto.EnvelopeCodec, sess *session.Session, cipher models.CipherNote, key []byte) models.PlainNote {
	plain, err := codec.DecryptNote(cipher, key)
	if err == nil {
		return plain
	}

	metrics.IncrementDecryptionFailure()
	sess.Logger().Warn().Err(err).Str("func", "decryptOrPlaceholder").
		Str("note_id", cipher.ID).Msg("note could not be decrypted")

	return models.PlainNote{
		NoteMeta:         cipher.NoteMeta,
		Title:            models.UndecryptablePlaceholder,
		Content:          models.UndecryptablePlaceholder,
		Tags:             []string{},
		DecryptionFailed: true,
	}
}
