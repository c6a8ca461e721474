package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// ClientStorages groups the client-side stores into a single value that can
// be passed to the service layer.
type ClientStorages struct {
	// Local is the SQLite-backed store for encrypted notes, the pending
	// queue and salts.
	Local LocalStore

	// SessionCache holds the derived key between runs for the configured TTL.
	SessionCache SessionCache

	redis *redis.Client
}

// NewClientStorages initialises the client storage layer:
//  1. opens the SQLite file at cfg.Storage.DB.DSN, creating it if needed;
//  2. runs pending schema migrations via [DB.Migrate];
//  3. connects the Redis session cache when an address is configured and
//     falls back to an in-process cache otherwise.
func NewClientStorages(ctx context.Context, cfg config.ClientConfig, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.Storage.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	storages := &ClientStorages{
		Local:        NewSQLiteStore(db, logger),
		SessionCache: NewMemorySessionCache(),
	}

	if cfg.Session.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddress})
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			logger.Warn().Err(pingErr).
				Str("func", "NewClientStorages").
				Str("redis", cfg.Session.RedisAddress).
				Msg("redis unreachable, caching session key in memory")
			_ = client.Close()
		} else {
			storages.redis = client
			storages.SessionCache = NewRedisSessionCache(client)
		}
	}

	return storages, nil
}

// Close releases the database and the Redis connection.
func (s *ClientStorages) Close() error {
	var redisErr error
	if s.redis != nil {
		redisErr = s.redis.Close()
	}
	if err := s.Local.Close(); err != nil {
		return err
	}
	return redisErr
}
