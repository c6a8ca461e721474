package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

type keyService struct {
	keychain crypto.KeyChainService
	codec    crypto.EnvelopeCodec
	remote   adapter.RemoteStore
	retry    RetryPolicy
}

func NewKeyService(keychain crypto.KeyChainService, codec crypto.EnvelopeCodec, remote adapter.RemoteStore, retry RetryPolicy) KeyService {
	return &keyService{
		keychain: keychain,
		codec:    codec,
		remote:   remote,
		retry:    retry,
	}
}

func (k *keyService) Unlock(ctx context.Context, sess *session.Session, password string, online bool) error {
	if sess == nil {
		return ErrNoSession
	}
	if password == "" {
		return ErrEmptyPassword
	}

	owner := sess.OwnerID()
	log := sess.Logger()

	salt, err := sess.Store().GetSalt(ctx, owner)
	if err != nil {
		return fmt.Errorf("read local salt: %w", err)
	}

	if salt == nil && online {
		salt, err = k.remoteSalt(ctx, owner)
		if err != nil {
			if !adapter.IsRetryable(err) {
				return err
			}
			log.Warn().Err(err).Str("func", "keyService.Unlock").Msg("remote salt unavailable, continuing offline")
		}
		if salt != nil {
			remoteSalt := salt
			if err = writeLocal(ctx, sess, func(st store.LocalStore) error {
				return st.SaveSalt(ctx, owner, remoteSalt)
			}); err != nil {
				return err
			}
		}
	}

	generated := salt == nil
	material, err := k.keychain.DeriveKey(password, salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}

	if err = k.verifyKey(ctx, sess, material.Key); err != nil {
		return err
	}

	if generated {
		if err = writeLocal(ctx, sess, func(st store.LocalStore) error {
			return st.SaveSalt(ctx, owner, material.Salt)
		}); err != nil {
			return err
		}

		if online {
			saveErr := k.retry.Do(ctx, func(ctx context.Context) error {
				return k.remote.SaveSalt(ctx, owner, material.Salt)
			})
			if saveErr != nil {
				// pushed again at the start of the next drain
				log.Warn().Err(saveErr).Str("func", "keyService.Unlock").Msg("failed to store salt remotely")
			}
		}
	}

	sess.Keys().SetKey(ctx, material.Key)
	log.Info().Str("func", "keyService.Unlock").Bool("new_salt", generated).Msg("session unlocked")
	return nil
}

func (k *keyService) remoteSalt(ctx context.Context, owner string) ([]byte, error) {
	var salt []byte
	err := k.retry.Do(ctx, func(ctx context.Context) error {
		var getErr error
		salt, getErr = k.remote.GetSalt(ctx, owner)
		return getErr
	})
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return salt, nil
}

// verifyKey rejects a key that opens none of the owner's local notes, which
// is what a mistyped password looks like. Owners without notes always pass.
func (k *keyService) verifyKey(ctx context.Context, sess *session.Session, key []byte) error {
	notes, err := sess.Store().ListByOwner(ctx, sess.OwnerID())
	if err != nil {
		return fmt.Errorf("list local notes: %w", err)
	}
	if len(notes) == 0 {
		return nil
	}

	var lastErr error
	for _, note := range notes {
		if _, lastErr = k.codec.DecryptNote(note, key); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("wrong password: %w", lastErr)
}

func (k *keyService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrNoSession
	}

	var errs []error
	if err := sess.Keys().ClearKey(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session key: %w", err))
	}
	if err := sess.Store().WipeOwner(ctx, sess.OwnerID()); err != nil {
		errs = append(errs, fmt.Errorf("wipe local data: %w", err))
	}
	// a degraded session writes to memory, but the database file still
	// holds what was stored before the switch
	if sess.Degraded() {
		if err := sess.Durable().WipeOwner(ctx, sess.OwnerID()); err != nil {
			sess.Logger().Err(err).Str("func", "keyService.Logout").
				Msg("local database was not wiped, encrypted notes remain on disk")
			errs = append(errs, fmt.Errorf("wipe durable store: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		sess.Logger().Err(err).Str("func", "keyService.Logout").Msg("logout incomplete")
		return err
	}

	sess.Logger().Info().Str("func", "keyService.Logout").Msg("local data wiped")
	return nil
}
