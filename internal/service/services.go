package service

import (
	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/crypto"
)

// Services groups the orchestrator. All of them are stateless with respect to
// the account: the [session.Session] passed to each call carries the owner,
// the key and the store.
type Services struct {
	KeyChain crypto.KeyChainService
	Codec    crypto.EnvelopeCodec

	NoteService NoteService
	SyncService SyncService
	KeyService  KeyService
}

func NewServices(cfg config.ClientConfig, remote adapter.RemoteStore, network Connectivity) *Services {
	keychain := crypto.NewKeyChainServiceWithParams(crypto.ArgonParams{
		Time:      cfg.Crypto.ArgonTime,
		MemoryKiB: cfg.Crypto.ArgonMemoryKiB,
		Threads:   cfg.Crypto.ArgonThreads,
	})
	codec := crypto.NewEnvelopeCodec()
	retry := NewRetryPolicy(cfg.Retry)

	return &Services{
		KeyChain:    keychain,
		Codec:       codec,
		NoteService: NewNoteService(remote, codec, network, retry),
		SyncService: NewSyncService(remote, retry),
		KeyService:  NewKeyService(keychain, codec, remote, retry),
	}
}
