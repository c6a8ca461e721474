// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/internal/config"
)

// PasswordReader asks the user for the account password.
type PasswordReader func(prompt string) (string, error)

// AppFactory builds the application for a command from the merged config.
// Tests replace it to inject fakes.
type AppFactory func(ctx context.Context, cfg *config.ClientConfig) (*App, error)
