// Package utils provides small helpers shared by the client packages:
// identifier generation, bearer token parsing and the HTTP client wrapper.
package utils

import (
	"github.com/google/uuid"

	"github.com/MKhiriev/go-note-keeper/models"
)

// UUIDGenerator produces time-ordered (v7) identifiers.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// LocalID returns an identifier for a note created on the device. It carries
// [models.LocalIDPrefix] until the remote store assigns the permanent one.
func (g *UUIDGenerator) LocalID() string {
	return models.LocalIDPrefix + g.Generate()
}
