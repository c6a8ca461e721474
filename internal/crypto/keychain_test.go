package crypto

import (
	"bytes"
	"testing"
)

// fastParams keeps Argon2id cheap in tests; determinism does not depend on cost.
var fastParams = ArgonParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	svc := NewKeyChainService()

	s1, err := svc.GenerateEncryptionSalt()
	if err != nil {
		t.Fatalf("GenerateEncryptionSalt error: %v", err)
	}
	s2, err := svc.GenerateEncryptionSalt()
	if err != nil {
		t.Fatalf("GenerateEncryptionSalt error: %v", err)
	}

	if len(s1) != 16 || len(s2) != 16 {
		t.Fatalf("salt lengths = %d, %d, want 16", len(s1), len(s2))
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestDeriveKey_DeterministicForSameInputs(t *testing.T) {
	svc := NewKeyChainServiceWithParams(fastParams)

	password := "correct horse battery staple"
	salt := bytes.Repeat([]byte{0xAB}, 16)

	m1, err := svc.DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	m2, err := svc.DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	if len(m1.Key) != 32 {
		t.Fatalf("key length = %d, want 32", len(m1.Key))
	}
	if !bytes.Equal(m1.Key, m2.Key) {
		t.Fatalf("expected keys to match for same password+salt")
	}
	if !bytes.Equal(m1.Salt, salt) {
		t.Fatalf("expected the supplied salt to be returned")
	}
}

func TestDeriveKey_GeneratesSaltWhenMissing(t *testing.T) {
	svc := NewKeyChainServiceWithParams(fastParams)

	m1, err := svc.DeriveKey("pw", nil)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	m2, err := svc.DeriveKey("pw", nil)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	if len(m1.Salt) != 16 {
		t.Fatalf("salt length = %d, want 16", len(m1.Salt))
	}
	if bytes.Equal(m1.Salt, m2.Salt) {
		t.Fatalf("expected fresh salts per call")
	}
	if bytes.Equal(m1.Key, m2.Key) {
		t.Fatalf("expected different keys for different generated salts")
	}

	again, err := svc.DeriveKey("pw", m1.Salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	if !bytes.Equal(again.Key, m1.Key) {
		t.Fatalf("re-deriving with the returned salt must reproduce the key")
	}
}

func TestDeriveKey_DifferentSaltProducesDifferentKey(t *testing.T) {
	svc := NewKeyChainServiceWithParams(fastParams)

	k1, _ := svc.DeriveKey("same password", bytes.Repeat([]byte{0x01}, 16))
	k2, _ := svc.DeriveKey("same password", bytes.Repeat([]byte{0x02}, 16))

	if bytes.Equal(k1.Key, k2.Key) {
		t.Fatalf("expected different keys for different salts")
	}
}

func TestDeriveKey_DifferentPasswordProducesDifferentKey(t *testing.T) {
	svc := NewKeyChainServiceWithParams(fastParams)
	salt := bytes.Repeat([]byte{0x03}, 16)

	k1, _ := svc.DeriveKey("alpha", salt)
	k2, _ := svc.DeriveKey("bravo", salt)

	if bytes.Equal(k1.Key, k2.Key) {
		t.Fatalf("expected different keys for different passwords")
	}
}

func TestNewKeyChainServiceWithParams_ZeroFieldsUseDefaults(t *testing.T) {
	svc := NewKeyChainServiceWithParams(ArgonParams{}).(*keyChainService)

	if svc.params != DefaultArgonParams() {
		t.Fatalf("params = %+v, want %+v", svc.params, DefaultArgonParams())
	}
}
