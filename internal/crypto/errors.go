package crypto

import "errors"

var (
	// ErrDecryption is returned when an envelope cannot be opened: wrong key,
	// corrupt encoding, truncated payload or an authentication-tag mismatch.
	ErrDecryption = errors.New("decryption failed")

	// ErrInvalidKeyLength is returned when the supplied key is not a 256-bit
	// AES key.
	ErrInvalidKeyLength = errors.New("invalid key length")
)
