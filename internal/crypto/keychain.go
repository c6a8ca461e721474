// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	saltLength = 16
	keyLength  = 32 // AES-256
)

// ArgonParams are the Argon2id cost parameters. They are part of the key
// derivation: changing them for an existing account makes its notes
// undecryptable.
type ArgonParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultArgonParams returns the parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
func DefaultArgonParams() ArgonParams {
	return ArgonParams{
		Time:      1,
		MemoryKiB: 64 * 1024,
		Threads:   4,
	}
}

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	params ArgonParams
}

// NewKeyChainService constructs a [KeyChainService] with [DefaultArgonParams].
func NewKeyChainService() KeyChainService {
	return NewKeyChainServiceWithParams(DefaultArgonParams())
}

// NewKeyChainServiceWithParams constructs a [KeyChainService] with explicit
// Argon2id parameters. Zero fields fall back to the defaults.
func NewKeyChainServiceWithParams(params ArgonParams) KeyChainService {
	def := DefaultArgonParams()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.MemoryKiB == 0 {
		params.MemoryKiB = def.MemoryKiB
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}
	return &keyChainService{params: params}
}

// GenerateEncryptionSalt implements [KeyChainService].
func (k *keyChainService) GenerateEncryptionSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey implements [KeyChainService].
func (k *keyChainService) DeriveKey(password string, salt []byte) (models.KeyMaterial, error) {
	if len(salt) == 0 {
		generated, err := k.GenerateEncryptionSalt()
		if err != nil {
			return models.KeyMaterial{}, err
		}
		salt = generated
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		k.params.Time,
		k.params.MemoryKiB,
		k.params.Threads,
		keyLength,
	)

	return models.KeyMaterial{
		Key:  key,
		Salt: append([]byte(nil), salt...),
	}, nil
}
