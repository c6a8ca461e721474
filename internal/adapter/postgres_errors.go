package adapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells whether a failed database call should be
// retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable is the default for unrecognised errors, constraint
	// violations, syntax errors and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable means the call may succeed if attempted again (connection
	// loss, deadlock rollback, server starting up).
	Retryable
)

// ClassifyPostgresError inspects err as returned by the pgx driver.
func ClassifyPostgresError(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	// the request never reached the server or the connection broke
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return Retryable
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return Retryable
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return Retryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable
	}

	return NonRetryable
}

// ClassifyPgError maps a *pgconn.PgError by SQLSTATE.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
//
// Retryable codes:
//   - Class 08, connection exceptions (08000, 08003, 08006)
//   - Class 40, transaction rollback, serialization failure, deadlock (40000, 40001, 40P01)
//   - Class 53, insufficient resources (53000, 53300)
//   - Class 57, admin shutdown and cannot connect now (57P01, 57P03)
//
// Every other code is [NonRetryable].
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	switch pgErr.Code {
	// Class 08: connection exceptions
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure:
		return Retryable

	// Class 40: transaction rollback
	case pgerrcode.TransactionRollback, // 40000
		pgerrcode.SerializationFailure, // 40001
		pgerrcode.DeadlockDetected:     // 40P01
		return Retryable

	// Class 53: insufficient resources
	case pgerrcode.InsufficientResources,
		pgerrcode.TooManyConnections:
		return Retryable

	// Class 57: operator intervention
	case pgerrcode.AdminShutdown,
		pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}

// wrapPgErr tags retryable failures with [ErrTemporary] and integrity
// violations with [ErrConflict] or [ErrBadRequest].
func wrapPgErr(op string, err error) error {
	if ClassifyPostgresError(err) == Retryable {
		return fmt.Errorf("%w: %s: %w", ErrTemporary, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s: %w", ErrConflict, op, err)
		case pgerrcode.NotNullViolation, pgerrcode.CheckViolation,
			pgerrcode.InvalidTextRepresentation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%w: %s: %w", ErrBadRequest, op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
