// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	putNote = `
		INSERT INTO notes (
			id,
			owner_id,
			title,
			content,
			tags,
			created_at,
			updated_at,
			sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id    = excluded.owner_id,
			title       = excluded.title,
			content     = excluded.content,
			tags        = excluded.tags,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at,
			sync_status = excluded.sync_status;`

	getNote = `
		SELECT
			id,
			owner_id,
			title,
			content,
			tags,
			created_at,
			updated_at,
			sync_status
		FROM notes
		WHERE id = ?;`

	listNotesByOwner = `
		SELECT
			id,
			owner_id,
			title,
			content,
			tags,
			created_at,
			updated_at,
			sync_status
		FROM notes
		WHERE owner_id = ?
		ORDER BY updated_at DESC, id;`

	deleteNote = `DELETE FROM notes WHERE id = ?;`

	enqueueOperation = `
		INSERT INTO pending_operations (
			owner_id,
			note_id,
			action,
			payload,
			created_at
		) VALUES (?, ?, ?, ?, ?);`

	hasPendingOperations = `
		SELECT EXISTS (
			SELECT 1 FROM pending_operations WHERE note_id = ?
		);`

	recordAttempt = `
		UPDATE pending_operations SET
			attempts   = attempts + 1,
			last_error = ?
		WHERE id = ?;`

	saveSalt = `
		INSERT INTO salts (owner_id, salt) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET salt = excluded.salt;`

	getSalt = `SELECT salt FROM salts WHERE owner_id = ?;`

	// the new ID may already exist when hydration stored the remote copy
	// before the local one was renamed
	deleteNoteWithNewID = `DELETE FROM notes WHERE id = ?;`

	renameNote = `UPDATE notes SET id = ? WHERE id = ?;`

	renamePendingOperations = `
		UPDATE pending_operations SET
			note_id = ?,
			payload = CASE
				WHEN payload IS NULL THEN NULL
				ELSE json_set(payload, '$.id', ?)
			END
		WHERE note_id = ?;`

	wipeOwnerNotes             = `DELETE FROM notes WHERE owner_id = ?;`
	wipeOwnerPendingOperations = `DELETE FROM pending_operations WHERE owner_id = ?;`
	wipeOwnerSalt              = `DELETE FROM salts WHERE owner_id = ?;`
)

var pendingOperationColumns = []string{
	"id",
	"owner_id",
	"note_id",
	"action",
	"payload",
	"created_at",
	"attempts",
	"last_error",
}
