package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_Generate(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.Generate()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("expected a valid uuid, got %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("expected uuid v7, got v%d", parsed.Version())
	}
	if g.Generate() == id {
		t.Error("expected two calls to produce different ids")
	}
}

func TestUUIDGenerator_LocalID(t *testing.T) {
	id := NewUUIDGenerator().LocalID()

	if !strings.HasPrefix(id, "local-") {
		t.Fatalf("expected local- prefix, got %q", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "local-")); err != nil {
		t.Errorf("expected uuid after prefix: %v", err)
	}
}
