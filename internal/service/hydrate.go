package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

// hydrator merges the remote list into the local store, last write wins by
// UpdatedAt. Notes with queued operations are left alone, and synced local
// notes that the remote no longer has are removed.
type hydrator struct {
	remote adapter.RemoteStore
	retry  RetryPolicy
}

func (h *hydrator) run(ctx context.Context, sess *session.Session) error {
	owner := sess.OwnerID()

	var remoteNotes []models.CipherNote
	err := h.retry.Do(ctx, func(ctx context.Context) error {
		var listErr error
		remoteNotes, listErr = h.remote.List(ctx, owner)
		return listErr
	})
	if err != nil {
		return mapRemoteError(err)
	}

	local, err := sess.Store().ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("list local notes: %w", err)
	}
	localByID := make(map[string]models.CipherNote, len(local))
	for _, n := range local {
		localByID[n.ID] = n
	}

	seen := make(map[string]struct{}, len(remoteNotes))
	for _, remoteNote := range remoteNotes {
		remoteNote.OwnerID = owner
		remoteNote.SyncStatus = models.SyncStatusSynced
		seen[remoteNote.ID] = struct{}{}

		// a queued delete leaves no local row, so check the queue first
		pending, pendingErr := sess.Store().HasPending(ctx, remoteNote.ID)
		if pendingErr != nil {
			return fmt.Errorf("check pending operations: %w", pendingErr)
		}
		if pending {
			continue
		}
		if localNote, ok := localByID[remoteNote.ID]; ok && remoteNote.UpdatedAt.Before(localNote.UpdatedAt) {
			continue
		}

		note := remoteNote
		if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Put(ctx, note) }); err != nil {
			return err
		}
	}

	for _, localNote := range local {
		if _, ok := seen[localNote.ID]; ok {
			continue
		}
		if localNote.IsLocalID() || localNote.SyncStatus != models.SyncStatusSynced {
			continue
		}
		pending, pendingErr := sess.Store().HasPending(ctx, localNote.ID)
		if pendingErr != nil {
			return fmt.Errorf("check pending operations: %w", pendingErr)
		}
		if pending {
			continue
		}

		id := localNote.ID
		if err = writeLocal(ctx, sess, func(st store.LocalStore) error { return st.Delete(ctx, id) }); err != nil {
			return err
		}
	}

	return nil
}
