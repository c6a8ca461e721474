package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lastEntry decodes the final JSON line written to buf.
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestNewLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("sync", &buf)

	l.Info().Msg("drain finished")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "sync", entry["role"])
	assert.Equal(t, "drain finished", entry["message"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "func")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Error().Msg("dropped")

	assert.Zero(t, buf.Len())
}

func TestChildLoggers(t *testing.T) {
	tests := []struct {
		name  string
		child func(*Logger) *Logger
		field string
		want  any
	}{
		{
			name:  "child keeps parent fields",
			child: (*Logger).GetChildLogger,
			field: "role",
			want:  "client",
		},
		{
			name:  "owner scoped",
			child: func(l *Logger) *Logger { return l.ForOwner("owner-42") },
			field: "owner_id",
			want:  "owner-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			parent := newLogger("client", &buf)

			child := tt.child(parent)
			require.NotSame(t, parent, child)
			child.Info().Msg("scoped")

			assert.Equal(t, tt.want, lastEntry(t, &buf)[tt.field])
		})
	}
}

func TestForOwner_DoesNotTagParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger("client", &buf)

	_ = parent.ForOwner("owner-1")
	parent.Info().Msg("unscoped")

	assert.NotContains(t, lastEntry(t, &buf), "owner_id")
}

func TestFromContext(t *testing.T) {
	t.Run("attached logger", func(t *testing.T) {
		var buf bytes.Buffer
		zl := zerolog.New(&buf).With().Str("trace_id", "abc").Logger()

		FromContext(zl.WithContext(context.Background())).Info().Msg("handled")

		assert.Equal(t, "abc", lastEntry(t, &buf)["trace_id"])
	})

	t.Run("empty context", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestNewClientLogger_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	NewClientLogger("client", path).Info().Msg("first")
	NewClientLogger("client", path).Info().Msg("second")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	buf := bytes.NewBuffer(data)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
	assert.Equal(t, "second", lastEntry(t, buf)["message"])
}

func TestNewClientLogger_UnwritablePath(t *testing.T) {
	l := NewClientLogger("client", filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	require.NotNil(t, l)
}
