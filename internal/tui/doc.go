// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders notes, sync reports and build info for the terminal and
// reads passwords without echo. It has no state of its own; commands in
// internal/client call it with values returned by the service layer.
package tui
