// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the note-keeper command-line application.
//
// [App] wires configuration, the local and remote stores, the identity
// broker and the orchestrator services into one process. Identity changes
// drive the session lifecycle: a login creates the session, a logout wipes
// the owner's local data. The cobra commands in this package are a thin
// surface over [App].
package client
