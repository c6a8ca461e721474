package crypto

import "github.com/MKhiriev/go-note-keeper/models"

// KeyChainService derives the session key from the user's password. It knows
// nothing about storage, the network or note structure.
//
// Scheme:
//
//	Salt = GenerateEncryptionSalt()          (once per account, stored openly)
//	Key  = Argon2id(password, Salt)          (volatile, never persisted)
type KeyChainService interface {
	// GenerateEncryptionSalt returns 16 random bytes from the OS CSPRNG.
	GenerateEncryptionSalt() ([]byte, error)

	// DeriveKey stretches password with Argon2id into a 256-bit key. A nil
	// or empty salt makes DeriveKey generate a fresh one. The same
	// (password, salt) pair always yields the same key, which is what lets
	// notes encrypted in one session be opened in the next.
	DeriveKey(password string, salt []byte) (models.KeyMaterial, error)
}

// EnvelopeCodec seals and opens individual note fields with the session key.
type EnvelopeCodec interface {
	// EncryptField seals plaintext under key with a fresh random nonce, so two
	// calls with identical input never return the same envelope.
	EncryptField(plaintext string, key []byte) (models.Envelope, error)

	// DecryptField opens an envelope produced by EncryptField. It returns an
	// error matching [ErrDecryption] when the key is wrong or the envelope is
	// malformed; it never returns garbled plaintext.
	DecryptField(envelope models.Envelope, key []byte) (string, error)

	// EncryptNote seals title, content and the serialized tag list. Metadata
	// is copied untouched.
	EncryptNote(note models.PlainNote, key []byte) (models.CipherNote, error)

	// DecryptNote opens a [models.CipherNote]. A [models.PlainNote] is
	// returned as is.
	DecryptNote(note models.NoteRecord, key []byte) (models.PlainNote, error)
}
