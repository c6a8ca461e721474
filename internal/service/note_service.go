package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/metrics"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

type noteService struct {
	remote  adapter.RemoteStore
	codec   crypto.EnvelopeCodec
	network Connectivity
	retry   RetryPolicy
	hydrate *hydrator
	valid   validators.Validator
	ids     *utils.UUIDGenerator
	now     func() time.Time
}

// NewNoteService wires the note API. network decides per call whether a
// mutation is mirrored remotely or only queued.
func NewNoteService(remote adapter.RemoteStore, codec crypto.EnvelopeCodec, network Connectivity, retry RetryPolicy) NoteService {
	return &noteService{
		remote:  remote,
		codec:   codec,
		network: network,
		retry:   retry,
		hydrate: &hydrator{remote: remote, retry: retry},
		valid:   validators.NewNoteValidator(),
		ids:     utils.NewUUIDGenerator(),
		now:     time.Now,
	}
}

func (s *noteService) Create(ctx context.Context, sess *session.Session, input models.NoteInput) (models.PlainNote, error) {
	if err := s.validate(ctx, input); err != nil {
		return models.PlainNote{}, err
	}
	key, err := requireKey(ctx, sess)
	if err != nil {
		return models.PlainNote{}, err
	}

	now := s.timestamp()
	plain := models.PlainNote{
		NoteMeta: models.NoteMeta{
			ID:         s.ids.LocalID(),
			OwnerID:    sess.OwnerID(),
			CreatedAt:  now,
			UpdatedAt:  now,
			SyncStatus: models.SyncStatusPending,
		},
		Title:   input.Title,
		Content: input.Content,
		Tags:    normalizeTags(input.Tags),
	}

	cipher, err := s.codec.EncryptNote(plain, key)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("encrypt note: %w", err)
	}

	if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Put(ctx, cipher) }); err != nil {
		return models.PlainNote{}, err
	}

	if s.network.Online() {
		remoteID, remoteErr := s.mirrorCreate(ctx, sess, cipher)
		if remoteID != "" {
			// the remote holds the note now; queueing the create again would
			// duplicate it, even if the local swap failed
			metrics.RecordMutation(string(models.ActionCreate), metrics.ModeOnline)
			plain.ID = remoteID
			plain.SyncStatus = models.SyncStatusSynced
			return plain, nil
		}
		s.reportRemoteFailure(sess, "noteService.Create", plain.ID, remoteErr)
	}

	if err = s.enqueue(ctx, sess, models.ActionCreate, plain.ID, &cipher); err != nil {
		return models.PlainNote{}, err
	}
	return plain, nil
}

// mirrorCreate sends the note and swaps the local ID for the remote one. A
// non-empty remote ID means the remote create succeeded, whatever happened
// locally afterwards.
func (s *noteService) mirrorCreate(ctx context.Context, sess *session.Session, cipher models.CipherNote) (string, error) {
	var remoteID string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var createErr error
		remoteID, createErr = s.remote.Create(ctx, sess.OwnerID(), cipher)
		return createErr
	})
	if err != nil {
		return "", err
	}

	localID := cipher.ID
	synced := cipher
	synced.ID = remoteID
	synced.SyncStatus = models.SyncStatusSynced

	err = writeLocal(ctx, sess, func(st store.LocalStore) error {
		if replaceErr := st.ReplaceNoteID(ctx, localID, remoteID); replaceErr != nil {
			return replaceErr
		}
		return st.Put(ctx, synced)
	})
	if err != nil {
		// drop the local-ID row; the next hydration restores the note under
		// its remote ID
		sess.Logger().Err(err).Str("func", "noteService.mirrorCreate").
			Str("note_id", localID).Str("remote_id", remoteID).
			Msg("failed to store remote id locally")
		if delErr := sess.Store().Delete(ctx, localID); delErr != nil && !errors.Is(delErr, store.ErrNoteNotFound) {
			sess.Logger().Err(delErr).Str("func", "noteService.mirrorCreate").
				Str("note_id", localID).Msg("failed to drop local copy")
		}
		return remoteID, err
	}

	return remoteID, nil
}

func (s *noteService) Update(ctx context.Context, sess *session.Session, noteID string, input models.NoteInput) (models.PlainNote, error) {
	if err := s.validate(ctx, noteID, input); err != nil {
		return models.PlainNote{}, err
	}
	key, err := requireKey(ctx, sess)
	if err != nil {
		return models.PlainNote{}, err
	}

	existing, err := sess.Store().Get(ctx, noteID)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("load note %s: %w", noteID, err)
	}

	meta := existing.NoteMeta
	meta.UpdatedAt = s.timestamp()
	if meta.UpdatedAt.Before(existing.UpdatedAt) {
		meta.UpdatedAt = existing.UpdatedAt
	}
	meta.SyncStatus = models.SyncStatusPending

	plain := models.PlainNote{
		NoteMeta: meta,
		Title:    input.Title,
		Content:  input.Content,
		Tags:     normalizeTags(input.Tags),
	}

	cipher, err := s.codec.EncryptNote(plain, key)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("encrypt note: %w", err)
	}

	if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Put(ctx, cipher) }); err != nil {
		return models.PlainNote{}, err
	}

	mirror, err := s.canMirror(ctx, sess, noteID)
	if err != nil {
		return models.PlainNote{}, err
	}
	if mirror {
		remoteErr := s.retry.Do(ctx, func(ctx context.Context) error {
			return s.remote.Update(ctx, sess.OwnerID(), noteID, cipher)
		})
		if remoteErr == nil {
			metrics.RecordMutation(string(models.ActionUpdate), metrics.ModeOnline)
			cipher.SyncStatus = models.SyncStatusSynced
			plain.SyncStatus = models.SyncStatusSynced
			if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Put(ctx, cipher) }); err != nil {
				return models.PlainNote{}, err
			}
			return plain, nil
		}
		s.reportRemoteFailure(sess, "noteService.Update", noteID, remoteErr)
	}

	if err = s.enqueue(ctx, sess, models.ActionUpdate, noteID, &cipher); err != nil {
		return models.PlainNote{}, err
	}
	return plain, nil
}

func (s *noteService) Delete(ctx context.Context, sess *session.Session, noteID string) error {
	if sess == nil {
		return ErrNoSession
	}
	if err := s.validate(ctx, noteID); err != nil {
		return err
	}
	if _, err := sess.Store().Get(ctx, noteID); err != nil {
		return fmt.Errorf("load note %s: %w", noteID, err)
	}

	mirror, err := s.canMirror(ctx, sess, noteID)
	if err != nil {
		return err
	}

	if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Delete(ctx, noteID) }); err != nil {
		return err
	}

	if mirror {
		remoteErr := s.retry.Do(ctx, func(ctx context.Context) error {
			return s.remote.Delete(ctx, sess.OwnerID(), noteID)
		})
		if remoteErr == nil || isRemoteNotFound(remoteErr) {
			metrics.RecordMutation(string(models.ActionDelete), metrics.ModeOnline)
			return nil
		}
		s.reportRemoteFailure(sess, "noteService.Delete", noteID, remoteErr)
	}

	return s.enqueue(ctx, sess, models.ActionDelete, noteID, nil)
}

func (s *noteService) Get(ctx context.Context, sess *session.Session, noteID string) (models.PlainNote, error) {
	key, err := requireKey(ctx, sess)
	if err != nil {
		return models.PlainNote{}, err
	}

	cipher, err := sess.Store().Get(ctx, noteID)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("load note %s: %w", noteID, err)
	}

	plain, err := s.codec.DecryptNote(cipher, key)
	if err != nil {
		metrics.IncrementDecryptionFailure()
		return models.PlainNote{}, fmt.Errorf("note %s: %w", noteID, err)
	}
	return plain, nil
}

func (s *noteService) LoadNotes(ctx context.Context, sess *session.Session, offline bool) ([]models.PlainNote, error) {
	key, err := requireKey(ctx, sess)
	if err != nil {
		return nil, err
	}

	if !offline {
		if err = s.hydrate.run(ctx, sess); err != nil {
			if !adapter.IsRetryable(err) {
				return nil, err
			}
			// unreachable remote: serve what we have
			s.network.ReportFailure(err)
			sess.Logger().Warn().Err(err).Str("func", "noteService.LoadNotes").
				Msg("remote list failed, showing local notes")
		}
	}

	ciphers, err := sess.Store().ListByOwner(ctx, sess.OwnerID())
	if err != nil {
		return nil, fmt.Errorf("list local notes: %w", err)
	}

	notes := make([]models.PlainNote, 0, len(ciphers))
	for _, cipher := range ciphers {
		notes = append(notes, decryptOrPlaceholder(s.codec, sess, cipher, key))
	}
	return notes, nil
}

// canMirror reports whether a mutation of noteID may go to the remote store
// right away: the remote is reachable, the note has a remote ID and nothing
// queued for the note would be overtaken.
func (s *noteService) canMirror(ctx context.Context, sess *session.Session, noteID string) (bool, error) {
	if !s.network.Online() || (models.NoteMeta{ID: noteID}).IsLocalID() {
		return false, nil
	}

	pending, err := sess.Store().HasPending(ctx, noteID)
	if err != nil {
		return false, fmt.Errorf("check pending operations: %w", err)
	}
	return !pending, nil
}

func (s *noteService) enqueue(ctx context.Context, sess *session.Session, action models.Action, noteID string, payload *models.CipherNote) error {
	op := models.PendingOperation{
		OwnerID:   sess.OwnerID(),
		NoteID:    noteID,
		Action:    action,
		Payload:   payload,
		Timestamp: s.now().UTC(),
	}

	err := writeLocal(ctx, sess, func(st store.LocalStore) error {
		_, enqueueErr := st.Enqueue(ctx, op)
		return enqueueErr
	})
	if err != nil {
		return fmt.Errorf("queue %s of note %s: %w", action, noteID, err)
	}

	metrics.RecordMutation(string(action), metrics.ModeQueued)
	return nil
}

func (s *noteService) reportRemoteFailure(sess *session.Session, fn, noteID string, err error) {
	s.network.ReportFailure(err)
	sess.Logger().Warn().Err(err).Str("func", fn).Str("note_id", noteID).
		Msg("remote mirror failed, operation queued")
}

// timestamp is truncated to the millisecond precision the local store keeps.
func (s *noteService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// validate runs the note validator over every value and tags failures with
// [ErrValidation].
func (s *noteService) validate(ctx context.Context, values ...any) error {
	for _, v := range values {
		if err := s.valid.Validate(ctx, v); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	return nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
