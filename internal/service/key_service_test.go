package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

func fastKeyChain() crypto.KeyChainService {
	return crypto.NewKeyChainServiceWithParams(crypto.ArgonParams{Time: 1, MemoryKiB: 64, Threads: 1})
}

// lockedEnv is a test env whose session has no key yet.
func lockedEnv(t *testing.T) (*testEnv, KeyService) {
	t.Helper()

	env := newTestEnv(t, false)
	require.NoError(t, env.sess.Keys().ClearKey(context.Background()))
	return env, NewKeyService(fastKeyChain(), env.codec, env.remote, testRetryPolicy())
}

func TestKeyService_UnlockOfflineGeneratesSalt(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	require.NoError(t, keys.Unlock(ctx, env.sess, "correct horse", false))

	salt, err := env.local.GetSalt(ctx, testOwner)
	require.NoError(t, err)
	assert.Len(t, salt, 16)

	key, ok := env.sess.Keys().GetKey(ctx)
	require.True(t, ok)
	assert.Len(t, key, 32)

	want, err := fastKeyChain().DeriveKey("correct horse", salt)
	require.NoError(t, err)
	assert.Equal(t, want.Key, key)
}

func TestKeyService_UnlockOnlinePrefersRemoteSalt(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()
	remoteSalt := []byte("fedcba9876543210")

	env.remote.EXPECT().GetSalt(gomock.Any(), testOwner).Return(remoteSalt, nil)

	require.NoError(t, keys.Unlock(ctx, env.sess, "pw", true))

	salt, err := env.local.GetSalt(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, remoteSalt, salt)

	want, err := fastKeyChain().DeriveKey("pw", remoteSalt)
	require.NoError(t, err)
	key, ok := env.sess.Keys().GetKey(ctx)
	require.True(t, ok)
	assert.Equal(t, want.Key, key)
}

func TestKeyService_UnlockOnlineNewAccount(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	var pushed []byte
	env.remote.EXPECT().GetSalt(gomock.Any(), testOwner).Return(nil, nil)
	env.remote.EXPECT().SaveSalt(gomock.Any(), testOwner, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, salt []byte) error {
			pushed = salt
			return nil
		})

	require.NoError(t, keys.Unlock(ctx, env.sess, "pw", true))

	local, err := env.local.GetSalt(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, local, pushed)
}

func TestKeyService_UnlockRemoteDownContinuesOffline(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	env.remote.EXPECT().GetSalt(gomock.Any(), testOwner).Return(nil, adapter.ErrTemporary).Times(2)
	env.remote.EXPECT().SaveSalt(gomock.Any(), testOwner, gomock.Any()).Return(adapter.ErrTemporary).Times(2)

	require.NoError(t, keys.Unlock(ctx, env.sess, "pw", true))

	_, ok := env.sess.Keys().GetKey(ctx)
	assert.True(t, ok)
}

func TestKeyService_UnlockRemoteRejects(t *testing.T) {
	env, keys := lockedEnv(t)

	env.remote.EXPECT().GetSalt(gomock.Any(), testOwner).Return(nil, adapter.ErrUnauthorized)

	err := keys.Unlock(testContext(), env.sess, "pw", true)
	assert.ErrorIs(t, err, ErrRemoteOperation)

	_, ok := env.sess.Keys().GetKey(testContext())
	assert.False(t, ok)
}

// The same password and salt give the key that opens notes from an earlier
// session; a different password is rejected.
func TestKeyService_UnlockVerifiesPassword(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	require.NoError(t, keys.Unlock(ctx, env.sess, "right", false))
	_, err := env.notes.Create(ctx, env.sess, models.NoteInput{Title: "sealed"})
	require.NoError(t, err)
	require.NoError(t, env.sess.Keys().ClearKey(ctx))

	err = keys.Unlock(ctx, env.sess, "wrong", false)
	assert.ErrorIs(t, err, ErrDecryption)
	_, ok := env.sess.Keys().GetKey(ctx)
	assert.False(t, ok)

	require.NoError(t, keys.Unlock(ctx, env.sess, "right", false))
	notes, err := env.notes.LoadNotes(ctx, env.sess, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "sealed", notes[0].Title)
}

func TestKeyService_UnlockEmptyPassword(t *testing.T) {
	env, keys := lockedEnv(t)

	assert.ErrorIs(t, keys.Unlock(testContext(), env.sess, "", false), ErrEmptyPassword)
	assert.ErrorIs(t, keys.Unlock(testContext(), nil, "pw", false), ErrNoSession)
}

func TestKeyService_UnlockCachesKey(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	cache := store.NewMemorySessionCache()
	sess := session.New(testOwner, session.NewKeyManager(cache, time.Minute, logger.Nop()), env.local, logger.Nop())

	require.NoError(t, keys.Unlock(ctx, sess, "pw", false))

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 32)

	// a new process with the same cache needs no password
	restarted := session.New(testOwner, session.NewKeyManager(cache, time.Minute, logger.Nop()), env.local, logger.Nop())
	key, ok := restarted.Keys().GetKey(ctx)
	require.True(t, ok)
	assert.Equal(t, cached, key)
}

// After logout the owner's notes, queue and salt are all gone and the key
// is cleared everywhere.
func TestKeyService_LogoutWipesEverything(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	cache := store.NewMemorySessionCache()
	sess := session.New(testOwner, session.NewKeyManager(cache, time.Minute, logger.Nop()), env.local, logger.Nop())

	require.NoError(t, keys.Unlock(ctx, sess, "pw", false))
	_, err := env.notes.Create(ctx, sess, models.NoteInput{Title: "a"})
	require.NoError(t, err)
	_, err = env.notes.Create(ctx, sess, models.NoteInput{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, keys.Logout(ctx, sess))

	notes, err := env.local.ListByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, env.pending(t))

	salt, err := env.local.GetSalt(ctx, testOwner)
	require.NoError(t, err)
	assert.Nil(t, salt)

	_, ok := sess.Keys().GetKey(ctx)
	assert.False(t, ok)
	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestKeyService_LogoutStoreFailure(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	require.NoError(t, env.local.Close())

	err := keys.Logout(ctx, env.sess)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, keys.Logout(ctx, nil), ErrNoSession)
}

// flakyWipeStore fails one Put so the session degrades, then recovers like a
// database file that is writable again by logout time.
type flakyWipeStore struct {
	store.LocalStore
	failPut atomic.Bool
}

func (f *flakyWipeStore) Put(ctx context.Context, note models.CipherNote) error {
	if f.failPut.CompareAndSwap(true, false) {
		return store.ErrStoreUnavailable
	}
	return f.LocalStore.Put(ctx, note)
}

func TestKeyService_LogoutWipesDurableStoreAfterDegrade(t *testing.T) {
	env, keys := lockedEnv(t)
	ctx := testContext()

	durable := &flakyWipeStore{LocalStore: env.local}
	sess := session.New(testOwner, session.NewKeyManager(nil, time.Minute, logger.Nop()), durable, logger.Nop())
	require.NoError(t, keys.Unlock(ctx, sess, "pw", false))

	_, err := env.notes.Create(ctx, sess, models.NoteInput{Title: "on disk"})
	require.NoError(t, err)

	durable.failPut.Store(true)
	_, err = env.notes.Create(ctx, sess, models.NoteInput{Title: "in memory"})
	require.NoError(t, err)
	require.True(t, sess.Degraded())

	require.NoError(t, keys.Logout(ctx, sess))

	onDisk, err := env.local.ListByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, onDisk)
	salt, err := env.local.GetSalt(ctx, testOwner)
	require.NoError(t, err)
	assert.Nil(t, salt)

	inMemory, err := sess.Store().ListByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, inMemory)
}

func TestKeyService_LogoutReportsUnwipedDurableStore(t *testing.T) {
	_, keys := lockedEnv(t)
	ctx := testContext()

	durable := store.NewMemoryStore()
	sess := session.New(testOwner, session.NewKeyManager(nil, time.Minute, logger.Nop()), durable, logger.Nop())
	sess.Degrade()
	require.NoError(t, durable.Close())

	err := keys.Logout(ctx, sess)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
