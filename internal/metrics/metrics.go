// Package metrics exposes Prometheus collectors for the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Replay results.
const (
	ResultSynced   = "synced"
	ResultFailed   = "failed"
	ResultDeferred = "deferred"
)

// Note mutation modes.
const (
	ModeOnline = "online"
	ModeQueued = "queued"
)

var (
	operationsReplayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notekeeper_sync_operations_total",
			Help: "Pending operations replayed against the remote store",
		},
		[]string{"action", "result"}, // create/update/delete, synced/failed/deferred
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notekeeper_sync_queue_depth",
			Help: "Pending operations left in the queue after the last drain",
		},
	)

	drainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notekeeper_sync_drain_duration_seconds",
			Help:    "Duration of a full queue drain in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	noteMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notekeeper_note_mutations_total",
			Help: "Note mutations by action and whether they reached the remote store directly",
		},
		[]string{"action", "mode"},
	)

	decryptionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notekeeper_decryption_failures_total",
			Help: "Notes that could not be decrypted with the session key",
		},
	)

	storeDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notekeeper_store_degraded_total",
			Help: "Sessions that switched to the in-memory store",
		},
	)
)

// RecordReplay counts one replayed pending operation.
func RecordReplay(action, result string) {
	operationsReplayed.WithLabelValues(action, result).Inc()
}

// RecordDrain records the duration of a drain and the queue left behind.
func RecordDrain(duration time.Duration, remaining int) {
	drainDuration.Observe(duration.Seconds())
	queueDepth.Set(float64(remaining))
}

func RecordMutation(action, mode string) {
	noteMutations.WithLabelValues(action, mode).Inc()
}

func IncrementDecryptionFailure() {
	decryptionFailures.Inc()
}

func IncrementStoreDegraded() {
	storeDegraded.Inc()
}

// WriteTextfile dumps every registered collector to path in the text
// exposition format, for the node_exporter textfile collector. Short-lived
// CLI runs have no endpoint to scrape.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
