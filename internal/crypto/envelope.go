// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/MKhiriev/go-note-keeper/models"
)

// envelopeVersion is sealed in front of every plaintext. It keeps the sealed
// payload non-empty for empty fields, so an opened envelope that yields no
// bytes at all is always a failure.
const envelopeVersion byte = 1

// envelopeCodec is the AES-256-GCM implementation of [EnvelopeCodec].
type envelopeCodec struct{}

// NewEnvelopeCodec constructs an [EnvelopeCodec].
//
// Envelope layout: base64.StdEncoding(nonce (12 bytes) ‖ GCM(version ‖ plaintext)).
func NewEnvelopeCodec() EnvelopeCodec {
	return &envelopeCodec{}
}

// EncryptField implements [EnvelopeCodec].
func (c *envelopeCodec) EncryptField(plaintext string, key []byte) (models.Envelope, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	framed := make([]byte, 0, len(plaintext)+1)
	framed = append(framed, envelopeVersion)
	framed = append(framed, plaintext...)

	// nonce is used as dst so the blob comes out as nonce || ciphertext.
	blob := gcm.Seal(nonce, nonce, framed, nil)
	return models.Envelope(base64.StdEncoding.EncodeToString(blob)), nil
}

// DecryptField implements [EnvelopeCodec].
func (c *envelopeCodec) DecryptField(envelope models.Envelope, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, err)
	}

	blob, err := base64.StdEncoding.DecodeString(string(envelope))
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %w", ErrDecryption, err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize+gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	// An error here almost always means a different session key.
	framed, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, err)
	}

	if len(framed) == 0 || framed[0] != envelopeVersion {
		return "", fmt.Errorf("%w: unknown envelope version", ErrDecryption)
	}
	plaintext := framed[1:]
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryption)
	}

	return string(plaintext), nil
}

// EncryptNote implements [EnvelopeCodec].
func (c *envelopeCodec) EncryptNote(note models.PlainNote, key []byte) (models.CipherNote, error) {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return models.CipherNote{}, fmt.Errorf("marshal tags: %w", err)
	}

	title, err := c.EncryptField(note.Title, key)
	if err != nil {
		return models.CipherNote{}, fmt.Errorf("encrypt title: %w", err)
	}
	content, err := c.EncryptField(note.Content, key)
	if err != nil {
		return models.CipherNote{}, fmt.Errorf("encrypt content: %w", err)
	}
	encTags, err := c.EncryptField(string(rawTags), key)
	if err != nil {
		return models.CipherNote{}, fmt.Errorf("encrypt tags: %w", err)
	}

	return models.CipherNote{
		NoteMeta: note.NoteMeta,
		Title:    title,
		Content:  content,
		Tags:     encTags,
	}, nil
}

// DecryptNote implements [EnvelopeCodec].
func (c *envelopeCodec) DecryptNote(record models.NoteRecord, key []byte) (models.PlainNote, error) {
	var note models.CipherNote
	switch r := record.(type) {
	case models.PlainNote:
		return r, nil
	case models.CipherNote:
		note = r
	default:
		return models.PlainNote{}, fmt.Errorf("unsupported note record %T", record)
	}

	title, err := c.DecryptField(note.Title, key)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("decrypt title of note %s: %w", note.ID, err)
	}
	content, err := c.DecryptField(note.Content, key)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("decrypt content of note %s: %w", note.ID, err)
	}
	rawTags, err := c.DecryptField(note.Tags, key)
	if err != nil {
		return models.PlainNote{}, fmt.Errorf("decrypt tags of note %s: %w", note.ID, err)
	}

	tags := make([]string, 0)
	if err = json.Unmarshal([]byte(rawTags), &tags); err != nil {
		return models.PlainNote{}, fmt.Errorf("%w: unmarshal tags of note %s: %w", ErrDecryption, note.ID, err)
	}

	return models.PlainNote{
		NoteMeta: note.NoteMeta,
		Title:    title,
		Content:  content,
		Tags:     tags,
	}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
