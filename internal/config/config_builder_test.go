package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_EarlierConfigWins verifies mergo only fills fields that are
// still zero, so the first config to set a field keeps it.
func TestBuild_EarlierConfigWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "1.0.0"}},
		&StructuredConfig{App: App{Version: "2.0.0", Token: "tok"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "tok", cfg.App.Token)
}

func TestBuild_RejectsUnknownBackend(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Adapter: Adapter{Backend: "grpc"}})

	cfg, err := b.build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
	assert.NotNil(t, cfg)
}

// ── withEnv / withFlags / withDefaults ───────────────────────────────────────

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{"APP_VERSION": "3.0.0"})

	b := newConfigBuilder().withEnv()
	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "3.0.0", b.configs[0].App.Version)
}

func TestWithFlags_NilIsSkipped(t *testing.T) {
	b := newConfigBuilder().withFlags(nil)
	assert.Empty(t, b.configs)
}

func TestWithFlags_AppendsConfig(t *testing.T) {
	flags := &StructuredConfig{App: App{Token: "flag-token"}}
	b := newConfigBuilder().withFlags(flags)
	require.Len(t, b.configs, 1)
	assert.Same(t, flags, b.configs[0])
}

func TestWithDefaults_FillsOnlyZeroFields(t *testing.T) {
	b := newConfigBuilder().
		withFlags(&StructuredConfig{Workers: Workers{SyncInterval: time.Minute}}).
		withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, BackendHTTP, cfg.Adapter.Backend)
	assert.Equal(t, uint64(3), cfg.Retry.MaxAttempts)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder().withFlags(&StructuredConfig{}).withJSON()
	require.NoError(t, b.err)
	assert.Len(t, b.configs, 1)
}

func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"storage": map[string]any{"db": map[string]any{"dsn": "from-json.db"}},
	})

	b := newConfigBuilder().withFlags(&StructuredConfig{JSONFilePath: path}).withJSON()
	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "from-json.db", b.configs[1].Storage.DB.DSN)
}

func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder().
		withFlags(&StructuredConfig{JSONFilePath: "/does/not/exist.json"}).
		withJSON()

	require.Error(t, b.err)
	assert.Len(t, b.configs, 1)
}

func TestWithJSON_FlagPathBeatsEnvPath(t *testing.T) {
	flagPath := writeTempJSONConfig(t, map[string]any{"app": map[string]any{"version": "flag"}})
	envPath := writeTempJSONConfig(t, map[string]any{"app": map[string]any{"version": "env"}})

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{JSONFilePath: flagPath},
		&StructuredConfig{JSONFilePath: envPath},
	)
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "flag", b.configs[2].App.Version)
}

// ── GetStructuredConfig ──────────────────────────────────────────────────────

func TestGetStructuredConfig_Priority(t *testing.T) {
	jsonPath := writeTempJSONConfig(t, map[string]any{
		"app":     map[string]any{"version": "json"},
		"adapter": map[string]any{"http_address": "http://json:1"},
		"storage": map[string]any{"db": map[string]any{"dsn": "json.db"}},
	})
	setEnvVars(t, map[string]string{
		"CONFIG":          jsonPath,
		"ADAPTER_ADDRESS": "http://env:2",
		"STORAGE_DB_DSN":  "env.db",
	})

	cfg, err := GetStructuredConfig(&StructuredConfig{Storage: Storage{DB: DB{DSN: "flag.db"}}})
	require.NoError(t, err)

	assert.Equal(t, "flag.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "http://env:2", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "json", cfg.App.Version)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)
}
