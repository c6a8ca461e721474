// Package migrations embeds the goose migrations of both schemas: the local
// SQLite store (local/) and the Postgres remote store (remote/).
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed local/*.sql remote/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

var errNilDB = errors.New("db is nil")

// MigrateLocal brings the SQLite schema of the local store up to date.
func MigrateLocal(db *sql.DB) error {
	return migrate(db, "sqlite3", "local")
}

// MigrateRemote brings the Postgres schema used by the Postgres remote
// backend up to date.
func MigrateRemote(db *sql.DB) error {
	return migrate(db, "pgx", "remote")
}

func migrate(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return fmt.Errorf("migration error: %w", errNilDB)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
