package models

import "time"

// SyncReport summarizes one drain of the pending-operation queue.
type SyncReport struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`

	// Deferred counts operations that were not attempted because an earlier
	// operation on the same note failed during the same pass. They are
	// included in Failed.
	Deferred int `json:"deferred"`

	// Hydrated is true when the drain finished without failures and the
	// local store was refreshed from the remote store afterwards.
	Hydrated bool `json:"hydrated"`

	Duration time.Duration `json:"duration"`
}

// KeyMaterial is the result of deriving the session key from a password.
// Salt is not secret; Key must only ever live in volatile memory or the
// short-lived session cache.
type KeyMaterial struct {
	Key  []byte
	Salt []byte
}

// Identity is published by the account collaborator on login. A nil identity
// means the user logged out.
type Identity struct {
	OwnerID string
	Token   string
}

// ClientStatus is what the status endpoint and "notes status" report.
type ClientStatus struct {
	OwnerID  string `json:"owner_id"`
	Online   bool   `json:"online"`
	Queued   int    `json:"queued"`
	Degraded bool   `json:"degraded"`
}
