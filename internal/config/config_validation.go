// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks the values that make the merged config unusable no matter
// which command runs.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Adapter.Backend {
	case "", BackendHTTP, BackendPostgres:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidAdapterConfigs, cfg.Adapter.Backend)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Adapter.Backend {
	case BackendHTTP:
		if cfg.Adapter.HTTPAddress == "" {
			return fmt.Errorf("%w: http backend needs an address", ErrInvalidAdapterConfigs)
		}
	case BackendPostgres:
		if cfg.Adapter.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres backend needs a dsn", ErrInvalidAdapterConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidAdapterConfigs, cfg.Adapter.Backend)
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidAdapterConfigs)
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Retry.MaxAttempts == 0 || cfg.Retry.BaseDelay <= 0 {
		return ErrInvalidRetryConfigs
	}

	if cfg.Session.KeyTTL <= 0 {
		return ErrInvalidSessionConfigs
	}

	return nil
}
