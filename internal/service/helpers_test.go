package service

import (
	"context"
	"crypto/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/crypto"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/mock"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

const testOwner = "owner"

// fakeNetwork is a Connectivity whose state the test flips by hand.
type fakeNetwork struct {
	online atomic.Bool
}

func (f *fakeNetwork) Online() bool { return f.online.Load() }

func (f *fakeNetwork) ReportFailure(err error) {
	if adapter.IsRetryable(err) {
		f.online.Store(false)
	}
}

type testEnv struct {
	remote  *mock.MockRemoteStore
	network *fakeNetwork
	codec   crypto.EnvelopeCodec
	local   store.LocalStore
	sess    *session.Session
	key     []byte

	notes NoteService
	sync  SyncService
}

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}
}

func newTestEnv(t *testing.T, online bool) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	network := &fakeNetwork{}
	network.online.Store(online)

	local := store.NewMemoryStore()
	sess := session.New(testOwner, session.NewKeyManager(nil, 0, logger.Nop()), local, logger.Nop())

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	sess.Keys().SetKey(context.Background(), key)

	codec := crypto.NewEnvelopeCodec()

	return &testEnv{
		remote:  remote,
		network: network,
		codec:   codec,
		local:   local,
		sess:    sess,
		key:     key,
		notes:   NewNoteService(remote, codec, network, testRetryPolicy()),
		sync:    NewSyncService(remote, testRetryPolicy()),
	}
}

// seedSynced stores an already synced note with a remote ID.
func (e *testEnv) seedSynced(t *testing.T, id, title string, updated time.Time) models.CipherNote {
	t.Helper()

	cipher, err := e.codec.EncryptNote(models.PlainNote{
		NoteMeta: models.NoteMeta{
			ID:         id,
			OwnerID:    testOwner,
			CreatedAt:  updated,
			UpdatedAt:  updated,
			SyncStatus: models.SyncStatusSynced,
		},
		Title:   title,
		Content: "body of " + title,
		Tags:    []string{},
	}, e.key)
	require.NoError(t, err)
	require.NoError(t, e.local.Put(context.Background(), cipher))
	return cipher
}

func (e *testEnv) pending(t *testing.T) []models.PendingOperation {
	t.Helper()

	ops, err := e.local.ListPendingByOwner(context.Background(), testOwner)
	require.NoError(t, err)
	return ops
}

// expectEmptyRemoteList lets hydration run against an empty remote store.
func (e *testEnv) expectEmptyRemoteList() {
	e.remote.EXPECT().List(gomock.Any(), testOwner).Return([]models.CipherNote{}, nil).AnyTimes()
}

func temporaryErr() error {
	return adapter.ErrTemporary
}

func testContext() context.Context {
	return context.Background()
}
