// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// ErrStatusUnavailable is logged when the status source fails; the client
// receives 503 with no body.
var ErrStatusUnavailable = errors.New("status unavailable")
