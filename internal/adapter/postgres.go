package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/migrations"
	"github.com/MKhiriev/go-note-keeper/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var remoteNoteColumns = []string{"id", "title", "content", "tags", "created_at", "updated_at"}

type postgresRemoteStore struct {
	db      *sql.DB
	ids     *utils.UUIDGenerator
	timeout time.Duration

	logger *logger.Logger
}

// NewPostgresRemoteStore connects to cfg.PostgresDSN through the pgx driver
// and migrates the remote schema.
func NewPostgresRemoteStore(ctx context.Context, cfg config.Adapter, log *logger.Logger) (RemoteStore, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("invalid adapter postgres dsn: empty")
	}

	conn, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Err(err).Str("func", "NewPostgresRemoteStore").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewPostgresRemoteStore").Msg("error connecting database (ping)")
		_ = conn.Close()
		return nil, wrapPgErr("ping", err)
	}

	if err = migrations.MigrateRemote(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newPostgresRemoteStore(conn, cfg.RequestTimeout, log), nil
}

func newPostgresRemoteStore(db *sql.DB, timeout time.Duration, log *logger.Logger) *postgresRemoteStore {
	return &postgresRemoteStore{
		db:      db,
		ids:     utils.NewUUIDGenerator(),
		timeout: timeout,
		logger:  log,
	}
}

// SetToken is a no-op: the database connection carries its own credentials.
func (p *postgresRemoteStore) SetToken(string) {}

func (p *postgresRemoteStore) Create(ctx context.Context, ownerID string, note models.CipherNote) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	id := p.ids.Generate()

	query, args, err := psql.Insert("notes").
		Columns("id", "owner_id", "title", "content", "tags", "created_at", "updated_at").
		Values(id, ownerID, string(note.Title), string(note.Content), string(note.Tags),
			note.CreatedAt.UTC(), note.UpdatedAt.UTC()).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err = p.db.ExecContext(ctx, query, args...); err != nil {
		p.logger.Err(err).Str("func", "postgresRemoteStore.Create").Str("note_id", note.ID).Msg("failed to insert note")
		return "", wrapPgErr("create note", err)
	}

	return id, nil
}

func (p *postgresRemoteStore) Update(ctx context.Context, ownerID, noteID string, note models.CipherNote) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Update("notes").
		Set("title", string(note.Title)).
		Set("content", string(note.Content)).
		Set("tags", string(note.Tags)).
		Set("updated_at", note.UpdatedAt.UTC()).
		Where(sq.Eq{"id": noteID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		p.logger.Err(err).Str("func", "postgresRemoteStore.Update").Str("note_id", noteID).Msg("failed to update note")
		return wrapPgErr("update note", err)
	}

	return requireAffected(res, noteID)
}

func (p *postgresRemoteStore) Delete(ctx context.Context, ownerID, noteID string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Delete("notes").
		Where(sq.Eq{"id": noteID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapPgErr("delete note", err)
	}

	return requireAffected(res, noteID)
}

func (p *postgresRemoteStore) List(ctx context.Context, ownerID string) ([]models.CipherNote, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Select(remoteNoteColumns...).
		From("notes").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapPgErr("list notes", err)
	}
	defer rows.Close()

	notes := make([]models.CipherNote, 0)
	for rows.Next() {
		note, scanErr := scanRemoteNote(rows, ownerID)
		if scanErr != nil {
			return nil, wrapPgErr("scan note", scanErr)
		}
		notes = append(notes, note)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapPgErr("iterate notes", err)
	}

	return notes, nil
}

func (p *postgresRemoteStore) Get(ctx context.Context, ownerID, noteID string) (models.CipherNote, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Select(remoteNoteColumns...).
		From("notes").
		Where(sq.Eq{"id": noteID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return models.CipherNote{}, fmt.Errorf("build select: %w", err)
	}

	note, err := scanRemoteNote(p.db.QueryRowContext(ctx, query, args...), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CipherNote{}, fmt.Errorf("%w: note %s", ErrNotFound, noteID)
	}
	if err != nil {
		return models.CipherNote{}, wrapPgErr("get note", err)
	}

	return note, nil
}

func (p *postgresRemoteStore) GetSalt(ctx context.Context, ownerID string) ([]byte, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Select("salt").
		From("account_salts").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var salt []byte
	err = p.db.QueryRowContext(ctx, query, args...).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapPgErr("get salt", err)
	}

	return salt, nil
}

// SaveSalt keeps the first salt stored for the owner.
func (p *postgresRemoteStore) SaveSalt(ctx context.Context, ownerID string, salt []byte) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query, args, err := psql.Insert("account_salts").
		Columns("owner_id", "salt").
		Values(ownerID, salt).
		Suffix("ON CONFLICT (owner_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = p.db.ExecContext(ctx, query, args...); err != nil {
		return wrapPgErr("save salt", err)
	}

	return nil
}

func (p *postgresRemoteStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRemoteNote(row rowScanner, ownerID string) (models.CipherNote, error) {
	var (
		note                 models.CipherNote
		title, content, tags string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&note.ID, &title, &content, &tags, &createdAt, &updatedAt); err != nil {
		return models.CipherNote{}, err
	}

	note.OwnerID = ownerID
	note.Title = models.Envelope(title)
	note.Content = models.Envelope(content)
	note.Tags = models.Envelope(tags)
	note.CreatedAt = createdAt.UTC()
	note.UpdatedAt = updatedAt.UTC()
	note.SyncStatus = models.SyncStatusSynced

	return note, nil
}

func requireAffected(res sql.Result, noteID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: note %s", ErrNotFound, noteID)
	}
	return nil
}
