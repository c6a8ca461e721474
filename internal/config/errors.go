package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid remote store settings
	// (unknown backend, missing address or DSN, zero request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero sync interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidRetryConfigs indicates a zero attempt budget or base delay.
	ErrInvalidRetryConfigs = errors.New("invalid retry configuration")
	// ErrInvalidSessionConfigs indicates a non-positive key cache TTL.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
)
