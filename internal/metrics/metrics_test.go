package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordReplay(t *testing.T) {
	before := testutil.ToFloat64(operationsReplayed.WithLabelValues("create", ResultSynced))

	RecordReplay("create", ResultSynced)
	RecordReplay("create", ResultSynced)

	after := testutil.ToFloat64(operationsReplayed.WithLabelValues("create", ResultSynced))
	assert.Equal(t, before+2, after)
}

func TestRecordDrain(t *testing.T) {
	RecordDrain(150*time.Millisecond, 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(queueDepth))

	RecordDrain(10*time.Millisecond, 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(queueDepth))
	assert.Equal(t, 1, testutil.CollectAndCount(drainDuration))
}

func TestCounters(t *testing.T) {
	decBefore := testutil.ToFloat64(decryptionFailures)
	degBefore := testutil.ToFloat64(storeDegraded)
	mutBefore := testutil.ToFloat64(noteMutations.WithLabelValues("delete", ModeQueued))

	IncrementDecryptionFailure()
	IncrementStoreDegraded()
	RecordMutation("delete", ModeQueued)

	assert.Equal(t, decBefore+1, testutil.ToFloat64(decryptionFailures))
	assert.Equal(t, degBefore+1, testutil.ToFloat64(storeDegraded))
	assert.Equal(t, mutBefore+1, testutil.ToFloat64(noteMutations.WithLabelValues("delete", ModeQueued)))
}

func TestWriteTextfile(t *testing.T) {
	RecordReplay("update", ResultFailed)
	path := filepath.Join(t.TempDir(), "notes.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notekeeper_sync_operations_total")
}
