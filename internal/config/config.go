// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-note-keeper client. It aggregates all sub-configurations and is
// populated by merging values from command-line flags, environment
// variables, an optional JSON file and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the access token and the application version.
	App App `envPrefix:"APP_"`

	// Adapter selects and configures the remote note store.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local SQLite database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Session holds the derived-key cache settings.
	Session Session `envPrefix:"SESSION_"`

	// Workers holds configuration for the background sync job.
	Workers Workers `envPrefix:"WORKERS_"`

	// Retry holds the backoff policy applied to remote replays.
	Retry Retry `envPrefix:"RETRY_"`

	// Crypto holds the Argon2id cost parameters.
	Crypto Crypto `envPrefix:"CRYPTO_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level values.
type App struct {
	// Token is the bearer token presented to the remote store. It is also
	// the source of the owner identity (JWT "sub" claim).
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Remote store backends accepted in [Adapter.Backend].
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

// Adapter holds the remote store settings.
type Adapter struct {
	// Backend is either "http" or "postgres".
	// Env: ADAPTER_BACKEND
	Backend string `env:"BACKEND"`

	// HTTPAddress is the base URL of the remote note API
	// (e.g. "http://localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// PostgresDSN is used when Backend is "postgres".
	// Env: ADAPTER_POSTGRES_DSN
	PostgresDSN string `env:"POSTGRES_DSN"`

	// RequestTimeout bounds every single remote call (e.g. "10s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the local durable store.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the path of the SQLite file.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Session holds the derived-key cache settings.
type Session struct {
	// RedisAddress enables the Redis-backed key cache when non-empty.
	// Without it the key is cached in process memory.
	// Env: SESSION_REDIS_ADDRESS
	RedisAddress string `env:"REDIS_ADDRESS"`

	// KeyTTL is how long a cached key survives without the user unlocking
	// again.
	// Env: SESSION_KEY_TTL
	KeyTTL time.Duration `env:"KEY_TTL"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the background drain.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// StatusAddress, when set, makes "notes watch" serve /healthz, /version
	// and /metrics on this address (e.g. "127.0.0.1:9100").
	// Env: WORKERS_STATUS_ADDRESS
	StatusAddress string `env:"STATUS_ADDRESS"`
}

// Retry holds the exponential backoff applied to each remote replay.
type Retry struct {
	// MaxAttempts includes the first attempt.
	// Env: RETRY_MAX_ATTEMPTS
	MaxAttempts uint64 `env:"MAX_ATTEMPTS"`

	// BaseDelay is the first backoff interval; it doubles on each retry.
	// Env: RETRY_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`
}

// Crypto holds the Argon2id parameters. Changing them for an existing
// account makes previously written notes undecryptable.
type Crypto struct {
	ArgonTime      uint32 `env:"ARGON_TIME"`
	ArgonMemoryKiB uint32 `env:"ARGON_MEMORY_KIB"`
	ArgonThreads   uint8  `env:"ARGON_THREADS"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. For every field the first non-zero value wins, in
// this order:
//  1. Command-line flags (flags may be nil)
//  2. Environment variables
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(flags *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(flags).
		withEnv().
		withJSON().
		withDefaults().
		build()
}
