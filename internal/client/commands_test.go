package client

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/app"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

// cliHarness runs commands the way the binary does: every command opens the
// same SQLite file, works offline and closes it again.
type cliHarness struct {
	t   *testing.T
	cfg config.ClientConfig
}

func newCLIHarness(t *testing.T, token string) *cliHarness {
	return &cliHarness{t: t, cfg: testConfig(t, token)}
}

func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()

	var out bytes.Buffer
	c := &cli{build: models.NewAppBuildInfo("1.0.0", "2026-10-16", "abc123"), out: &out}
	c.factory = func(ctx context.Context, _ *config.ClientConfig) (*App, error) {
		storages, err := store.NewClientStorages(ctx, h.cfg, logger.Nop())
		if err != nil {
			return nil, err
		}
		return newApp(h.cfg, storages, offlineRemote(h.t), func(string) (string, error) { return "pw", nil }, logger.Nop()), nil
	}

	// the merged config must validate before the factory runs
	args = append(args, "--address", "http://remote.invalid", "--db", h.cfg.Storage.DB.DSN)
	err := c.execute(context.Background(), args)
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()

	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

var localIDPattern = regexp.MustCompile(`local-[0-9a-f-]+`)

func TestCLI_Version(t *testing.T) {
	h := newCLIHarness(t, "")

	out := h.mustRun("version")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "abc123")
}

func TestCLI_NotSignedIn(t *testing.T) {
	h := newCLIHarness(t, "")

	_, err := h.run("list")
	assert.ErrorIs(t, err, app.ErrNotSignedIn)
}

func TestCLI_NoteLifecycleOffline(t *testing.T) {
	h := newCLIHarness(t, signedToken(t, testOwner))

	out := h.mustRun("add", "--title", "groceries", "--content", "milk, eggs", "--tags", "home,shopping")
	assert.Contains(t, out, "groceries")
	id := localIDPattern.FindString(out)
	require.NotEmpty(t, id, out)

	out = h.mustRun("list")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "queued")

	out = h.mustRun("edit", id, "--content", "milk, eggs, bread")
	assert.Contains(t, out, "milk, eggs, bread")
	assert.Contains(t, out, "groceries", "untouched title is kept")

	out = h.mustRun("show", id)
	assert.Contains(t, out, "milk, eggs, bread")
	assert.Contains(t, out, "home, shopping")

	out = h.mustRun("status")
	assert.Contains(t, out, "online:   false")
	assert.Contains(t, out, "queued:   2")

	h.mustRun("rm", id)
	_, err := h.run("show", id)
	assert.Error(t, err)
	assert.Equal(t, app.MsgNoteNotFound, app.UserMessage(err))
}

func TestCLI_SyncWhileOfflineKeepsQueue(t *testing.T) {
	h := newCLIHarness(t, signedToken(t, testOwner))
	metricsFile := filepath.Join(t.TempDir(), "notes.prom")

	h.mustRun("add", "--title", "offline note")

	out := h.mustRun("sync", "--metrics-file", metricsFile)
	assert.Contains(t, out, "Queued:    1")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notekeeper_sync_queue_depth")
}

func TestCLI_AddRejectsEmptyNote(t *testing.T) {
	h := newCLIHarness(t, signedToken(t, testOwner))

	_, err := h.run("add")
	assert.Equal(t, app.MsgEmptyNote, app.UserMessage(err))
}

func TestCLI_Logout(t *testing.T) {
	h := newCLIHarness(t, signedToken(t, testOwner))

	h.mustRun("add", "--title", "to be wiped")

	out := h.mustRun("logout")
	assert.Contains(t, out, "local data wiped")

	out = h.mustRun("list")
	assert.Contains(t, out, "no notes yet")
}
