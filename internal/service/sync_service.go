package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/metrics"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

type syncService struct {
	remote  adapter.RemoteStore
	retry   RetryPolicy
	hydrate *hydrator
	group   singleflight.Group
	now     func() time.Time
}

func NewSyncService(remote adapter.RemoteStore, retry RetryPolicy) SyncService {
	return &syncService{
		remote:  remote,
		retry:   retry,
		hydrate: &hydrator{remote: remote, retry: retry},
		now:     time.Now,
	}
}

func (s *syncService) SyncWithRemote(ctx context.Context, sess *session.Session) (models.SyncReport, error) {
	if sess == nil {
		return models.SyncReport{}, ErrNoSession
	}

	v, err, shared := s.group.Do(sess.OwnerID(), func() (any, error) {
		return s.drain(ctx, sess)
	})
	if shared {
		sess.Logger().Debug().Str("func", "syncService.SyncWithRemote").Msg("joined running drain")
	}

	report, _ := v.(models.SyncReport)
	return report, err
}

func (s *syncService) PendingCount(ctx context.Context, sess *session.Session) (int, error) {
	if sess == nil {
		return 0, ErrNoSession
	}
	ops, err := sess.Store().ListPendingByOwner(ctx, sess.OwnerID())
	if err != nil {
		return 0, fmt.Errorf("list pending operations: %w", err)
	}
	return len(ops), nil
}

func (s *syncService) drain(ctx context.Context, sess *session.Session) (models.SyncReport, error) {
	log := sess.Logger()
	start := s.now()
	report := models.SyncReport{}

	if err := s.reconcileSalt(ctx, sess); err != nil {
		log.Warn().Err(err).Str("func", "syncService.drain").Msg("salt reconciliation failed")
	}

	st := sess.Store()
	ops, err := st.ListPendingByOwner(ctx, sess.OwnerID())
	if err != nil {
		return report, fmt.Errorf("list pending operations: %w", err)
	}
	report.Total = len(ops)

	var (
		succeeded []int64
		touched   = make(map[string]struct{})
		// notes with a failed operation in this pass; their later operations
		// wait for the next drain so they are never applied out of order
		blocked = make(map[string]struct{})
		// local ID -> remote ID swaps made during this pass
		renamed = make(map[string]string)
	)

	for i, op := range ops {
		if ctx.Err() != nil {
			report.Failed += len(ops) - i
			break
		}

		noteID := op.NoteID
		if id, ok := renamed[noteID]; ok {
			noteID = id
		}

		if _, ok := blocked[noteID]; ok {
			report.Failed++
			report.Deferred++
			metrics.RecordReplay(string(op.Action), metrics.ResultDeferred)
			continue
		}

		newID, replayErr := s.replay(ctx, sess, op, noteID)
		if replayErr != nil {
			blocked[noteID] = struct{}{}
			report.Failed++
			metrics.RecordReplay(string(op.Action), metrics.ResultFailed)

			log.Warn().Err(replayErr).
				Str("func", "syncService.drain").
				Int64("op_id", op.ID).
				Str("note_id", noteID).
				Str("action", string(op.Action)).
				Msg("replay failed, operation stays queued")

			if recErr := st.RecordAttempt(ctx, op.ID, replayErr); recErr != nil {
				log.Err(recErr).Str("func", "syncService.drain").Int64("op_id", op.ID).Msg("failed to record attempt")
			}
			continue
		}

		if newID != "" && newID != noteID {
			renamed[noteID] = newID
			noteID = newID
		}
		succeeded = append(succeeded, op.ID)
		touched[noteID] = struct{}{}
		report.Synced++
		metrics.RecordReplay(string(op.Action), metrics.ResultSynced)
	}

	if len(succeeded) > 0 {
		if err = st.Dequeue(ctx, succeeded...); err != nil {
			// the operations stay queued and are replayed again next time
			return report, fmt.Errorf("dequeue synced operations: %w", err)
		}
	}

	s.markSynced(ctx, sess, touched)

	remaining := report.Failed
	if pending, countErr := st.ListPendingByOwner(ctx, sess.OwnerID()); countErr == nil {
		remaining = len(pending)
	}

	if ctx.Err() != nil {
		report.Duration = s.now().Sub(start)
		metrics.RecordDrain(report.Duration, remaining)
		return report, ctx.Err()
	}

	if report.Failed == 0 {
		if err = s.hydrate.run(ctx, sess); err != nil {
			log.Warn().Err(err).Str("func", "syncService.drain").Msg("hydration after drain failed")
		} else {
			report.Hydrated = true
		}
	}

	report.Duration = s.now().Sub(start)
	metrics.RecordDrain(report.Duration, remaining)

	log.Info().
		Str("func", "syncService.drain").
		Int("total", report.Total).
		Int("synced", report.Synced).
		Int("failed", report.Failed).
		Int("deferred", report.Deferred).
		Bool("hydrated", report.Hydrated).
		Dur("duration", report.Duration).
		Msg("drain finished")

	return report, nil
}

// replay sends one queued operation. For a create it returns the remote ID
// the note was rekeyed to.
func (s *syncService) replay(ctx context.Context, sess *session.Session, op models.PendingOperation, noteID string) (string, error) {
	owner := sess.OwnerID()

	switch op.Action {
	case models.ActionCreate:
		if op.Payload == nil {
			return "", ErrInvalidPayload
		}
		return s.replayCreate(ctx, sess, *op.Payload, noteID)

	case models.ActionUpdate:
		if op.Payload == nil {
			return "", ErrInvalidPayload
		}
		if (models.NoteMeta{ID: noteID}).IsLocalID() {
			// created in a session whose queue was lost; create it now
			return s.replayCreate(ctx, sess, *op.Payload, noteID)
		}

		payload := *op.Payload
		payload.ID = noteID
		err := s.retry.Do(ctx, func(ctx context.Context) error {
			return s.remote.Update(ctx, owner, noteID, payload)
		})
		if isRemoteNotFound(err) {
			// deleted elsewhere; the local edit is newer, bring the note back
			return s.replayCreate(ctx, sess, payload, noteID)
		}
		return "", mapRemoteError(err)

	case models.ActionDelete:
		if (models.NoteMeta{ID: noteID}).IsLocalID() {
			// never reached the remote store
			return "", nil
		}
		err := s.retry.Do(ctx, func(ctx context.Context) error {
			return s.remote.Delete(ctx, owner, noteID)
		})
		if isRemoteNotFound(err) {
			return "", nil
		}
		return "", mapRemoteError(err)

	default:
		return "", fmt.Errorf("unknown pending action %q", op.Action)
	}
}

func (s *syncService) replayCreate(ctx context.Context, sess *session.Session, payload models.CipherNote, noteID string) (string, error) {
	payload.ID = noteID

	var remoteID string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var createErr error
		remoteID, createErr = s.remote.Create(ctx, sess.OwnerID(), payload)
		return createErr
	})
	if err != nil {
		return "", mapRemoteError(err)
	}

	if err = writeLocal(ctx, sess, func(st store.LocalStore) error {
		return st.ReplaceNoteID(ctx, noteID, remoteID)
	}); err != nil {
		return "", fmt.Errorf("replace local id %s: %w", noteID, err)
	}

	return remoteID, nil
}

// markSynced flips notes whose queue is now empty to synced.
func (s *syncService) markSynced(ctx context.Context, sess *session.Session, noteIDs map[string]struct{}) {
	st := sess.Store()
	for id := range noteIDs {
		pending, err := st.HasPending(ctx, id)
		if err != nil || pending {
			continue
		}

		note, err := st.Get(ctx, id)
		if err != nil {
			// deleted notes have no row left
			continue
		}
		if note.SyncStatus == models.SyncStatusSynced {
			continue
		}

		note.SyncStatus = models.SyncStatusSynced
		if err = st.Put(ctx, note); err != nil {
			sess.Logger().Err(err).Str("func", "syncService.markSynced").Str("note_id", id).Msg("failed to mark note synced")
		}
	}
}

// reconcileSalt pushes a salt generated while offline to the remote store.
func (s *syncService) reconcileSalt(ctx context.Context, sess *session.Session) error {
	owner := sess.OwnerID()

	local, err := sess.Store().GetSalt(ctx, owner)
	if err != nil || local == nil {
		return err
	}

	var remote []byte
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		var getErr error
		remote, getErr = s.remote.GetSalt(ctx, owner)
		return getErr
	})
	if err != nil {
		return mapRemoteError(err)
	}

	if remote == nil {
		return mapRemoteError(s.retry.Do(ctx, func(ctx context.Context) error {
			return s.remote.SaveSalt(ctx, owner, local)
		}))
	}
	if !bytes.Equal(remote, local) {
		return ErrSaltConflict
	}
	return nil
}
