package models

import "time"

// Action is the kind of mutation recorded in a [PendingOperation].
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PendingOperation is a queued mutation that the remote store has not yet
// confirmed. It is removed exactly once, after a successful remote replay.
type PendingOperation struct {
	// ID is assigned by the local store and grows monotonically, so ordering
	// by ID gives FIFO replay order.
	ID      int64  `json:"id"`
	OwnerID string `json:"owner_id"`
	NoteID  string `json:"note_id"`
	Action  Action `json:"action"`

	// Payload is the already-encrypted note for create and update; nil for
	// delete.
	Payload *CipherNote `json:"payload,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Attempts counts failed remote replays of this operation.
	Attempts int `json:"attempts"`
	// LastError is the message of the most recent failed replay.
	LastError string `json:"last_error,omitempty"`
}
