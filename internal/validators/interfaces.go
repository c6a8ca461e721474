// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks user input before it is encrypted and stored.
//
// A Validator is injected into the service layer; Validate can be limited to
// named fields so an update that only touches some fields is not rejected
// for the others.
package validators

import "context"

// Validator validates obj, optionally only the named fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
