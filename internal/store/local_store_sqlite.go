package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

type sqliteStore struct {
	*DB
	logger *logger.Logger
}

// NewSQLiteStore wraps an opened and migrated local database.
func NewSQLiteStore(db *DB, logger *logger.Logger) LocalStore {
	return &sqliteStore{
		DB:     db,
		logger: logger,
	}
}

func (s *sqliteStore) Put(ctx context.Context, note models.CipherNote) error {
	log := logger.FromContext(ctx)

	if note.ID == "" || note.OwnerID == "" {
		return ErrInvalidNote
	}

	_, err := s.DB.ExecContext(ctx, putNote,
		note.ID,
		note.OwnerID,
		string(note.Title),
		string(note.Content),
		string(note.Tags),
		toUnixMilli(note.CreatedAt),
		toUnixMilli(note.UpdatedAt),
		string(note.SyncStatus),
	)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Put").
			Str("note_id", note.ID).
			Msg("failed to upsert note")
		return wrapErr(ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, noteID string) (models.CipherNote, error) {
	log := logger.FromContext(ctx)

	note, err := scanNote(s.DB.QueryRowContext(ctx, getNote, noteID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CipherNote{}, ErrNoteNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Get").
			Str("note_id", noteID).
			Msg("failed to scan note row")
		return models.CipherNote{}, wrapErr(ErrScanningRow, err)
	}

	return note, nil
}

func (s *sqliteStore) ListByOwner(ctx context.Context, ownerID string) ([]models.CipherNote, error) {
	log := logger.FromContext(ctx)

	rows, err := s.DB.QueryContext(ctx, listNotesByOwner, ownerID)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.ListByOwner").
			Str("owner_id", ownerID).
			Msg("failed to execute query for listing notes")
		return nil, wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	notes := make([]models.CipherNote, 0)
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "sqliteStore.ListByOwner").
				Str("owner_id", ownerID).
				Msg("failed to scan note row")
			return nil, wrapErr(ErrScanningRows, scanErr)
		}
		notes = append(notes, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "sqliteStore.ListByOwner").
			Str("owner_id", ownerID).
			Msg("error occurred during rows iteration")
		return nil, wrapErr(ErrScanningRows, rowsErr)
	}

	return notes, nil
}

func (s *sqliteStore) Delete(ctx context.Context, noteID string) error {
	if _, err := s.DB.ExecContext(ctx, deleteNote, noteID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.Delete").
			Str("note_id", noteID).
			Msg("failed to delete note")
		return wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteStore) Enqueue(ctx context.Context, op models.PendingOperation) (int64, error) {
	log := logger.FromContext(ctx)

	var payload sql.NullString
	if op.Payload != nil {
		raw, err := json.Marshal(op.Payload)
		if err != nil {
			return 0, fmt.Errorf("marshal pending payload: %w", err)
		}
		payload = sql.NullString{String: string(raw), Valid: true}
	}

	timestamp := op.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	res, err := s.DB.ExecContext(ctx, enqueueOperation,
		op.OwnerID,
		op.NoteID,
		string(op.Action),
		payload,
		toUnixMilli(timestamp),
	)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Enqueue").
			Str("note_id", op.NoteID).
			Str("action", string(op.Action)).
			Msg("failed to enqueue pending operation")
		return 0, wrapErr(ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapErr(ErrExecutingStatement, err)
	}

	return id, nil
}

func (s *sqliteStore) ListPending(ctx context.Context) ([]models.PendingOperation, error) {
	return s.listPending(ctx, sq.Select(pendingOperationColumns...).
		From("pending_operations").
		OrderBy("id"))
}

func (s *sqliteStore) ListPendingByOwner(ctx context.Context, ownerID string) ([]models.PendingOperation, error) {
	return s.listPending(ctx, sq.Select(pendingOperationColumns...).
		From("pending_operations").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id"))
}

func (s *sqliteStore) listPending(ctx context.Context, builder sq.SelectBuilder) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.listPending").
			Msg("failed to execute query for pending operations")
		return nil, wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.PendingOperation, 0)
	for rows.Next() {
		var (
			op        models.PendingOperation
			action    string
			payload   sql.NullString
			createdAt int64
		)
		if err = rows.Scan(
			&op.ID,
			&op.OwnerID,
			&op.NoteID,
			&action,
			&payload,
			&createdAt,
			&op.Attempts,
			&op.LastError,
		); err != nil {
			log.Err(err).
				Str("func", "sqliteStore.listPending").
				Msg("failed to scan pending operation row")
			return nil, wrapErr(ErrScanningRows, err)
		}

		op.Action = models.Action(action)
		op.Timestamp = fromUnixMilli(createdAt)
		if payload.Valid {
			var note models.CipherNote
			if err = json.Unmarshal([]byte(payload.String), &note); err != nil {
				return nil, fmt.Errorf("%w: payload of operation %d: %w", ErrScanningRows, op.ID, err)
			}
			op.Payload = &note
		}

		ops = append(ops, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, wrapErr(ErrScanningRows, rowsErr)
	}

	return ops, nil
}

func (s *sqliteStore) HasPending(ctx context.Context, noteID string) (bool, error) {
	var exists bool
	if err := s.DB.QueryRowContext(ctx, hasPendingOperations, noteID).Scan(&exists); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.HasPending").
			Str("note_id", noteID).
			Msg("failed to check pending operations")
		return false, wrapErr(ErrScanningRow, err)
	}
	return exists, nil
}

func (s *sqliteStore) Dequeue(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Delete("pending_operations").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.Dequeue").
			Int("count", len(ids)).
			Msg("failed to dequeue pending operations")
		return wrapErr(ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStore) RecordAttempt(ctx context.Context, id int64, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}

	res, err := s.DB.ExecContext(ctx, recordAttempt, message, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.RecordAttempt").
			Int64("operation_id", id).
			Msg("failed to record attempt")
		return wrapErr(ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return wrapErr(ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (s *sqliteStore) SaveSalt(ctx context.Context, ownerID string, salt []byte) error {
	if _, err := s.DB.ExecContext(ctx, saveSalt, ownerID, salt); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.SaveSalt").
			Str("owner_id", ownerID).
			Msg("failed to save salt")
		return wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteStore) GetSalt(ctx context.Context, ownerID string) ([]byte, error) {
	var salt []byte
	err := s.DB.QueryRowContext(ctx, getSalt, ownerID).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteStore.GetSalt").
			Str("owner_id", ownerID).
			Msg("failed to read salt")
		return nil, wrapErr(ErrScanningRow, err)
	}
	return salt, nil
}

func (s *sqliteStore) ReplaceNoteID(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	if oldID == newID {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "sqliteStore.ReplaceNoteID").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	statements := []struct {
		query string
		args  []any
	}{
		{query: deleteNoteWithNewID, args: []any{newID}},
		{query: renameNote, args: []any{newID, oldID}},
		{query: renamePendingOperations, args: []any{newID, newID, oldID}},
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			log.Err(err).
				Str("func", "sqliteStore.ReplaceNoteID").
				Str("old_id", oldID).
				Str("new_id", newID).
				Msg("failed to rename note")
			return wrapErr(ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "sqliteStore.ReplaceNoteID").Msg("failed to commit transaction")
		return wrapErr(ErrCommitingTransaction, err)
	}

	return nil
}

func (s *sqliteStore) WipeOwner(ctx context.Context, ownerID string) error {
	log := logger.FromContext(ctx)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "sqliteStore.WipeOwner").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, query := range []string{wipeOwnerNotes, wipeOwnerPendingOperations, wipeOwnerSalt} {
		if _, err = tx.ExecContext(ctx, query, ownerID); err != nil {
			log.Err(err).
				Str("func", "sqliteStore.WipeOwner").
				Str("owner_id", ownerID).
				Msg("failed to wipe owner data")
			return wrapErr(ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "sqliteStore.WipeOwner").Msg("failed to commit transaction")
		return wrapErr(ErrCommitingTransaction, err)
	}

	log.Info().Str("func", "sqliteStore.WipeOwner").Str("owner_id", ownerID).Msg("owner data wiped")
	return nil
}

func (s *sqliteStore) Close() error {
	return s.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.CipherNote, error) {
	var (
		note                 models.CipherNote
		title, content, tags string
		createdAt, updatedAt int64
		status               string
	)
	if err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&title,
		&content,
		&tags,
		&createdAt,
		&updatedAt,
		&status,
	); err != nil {
		return models.CipherNote{}, err
	}

	note.Title = models.Envelope(title)
	note.Content = models.Envelope(content)
	note.Tags = models.Envelope(tags)
	note.CreatedAt = fromUnixMilli(createdAt)
	note.UpdatedAt = fromUnixMilli(updatedAt)
	note.SyncStatus = models.SyncStatus(status)

	return note, nil
}

// Timestamps are stored as unix milliseconds; sub-millisecond precision is
// dropped.
func toUnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
