package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStoreUnavailable is wrapped around every failure caused by the
	// backing store being unusable: the database file cannot be opened, is
	// locked, corrupt, full or read-only, or the connection is closed. Other
	// failures (constraint violations, bad input) are not wrapped with it.
	ErrStoreUnavailable = errors.New("local store unavailable")

	// ErrNoteNotFound is returned by Get when no note has the requested ID.
	ErrNoteNotFound = errors.New("note was not found")

	// ErrOperationNotFound is returned by RecordAttempt when the queued
	// operation does not exist (already dequeued).
	ErrOperationNotFound = errors.New("pending operation was not found")

	// ErrInvalidNote is returned when a note without ID or owner is written.
	ErrInvalidNote = errors.New("note has no id or owner")
)

// Low-level database operation errors. These are returned (or wrapped) by
// store methods when a SQL-level operation fails before any domain logic can
// be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a dynamic SQL query
	// with squirrel fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
