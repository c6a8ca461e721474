package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

const defaultProbeInterval = 15 * time.Second

// Probe checks whether the remote store answers. Only temporary errors (as
// classified by the adapter) count as "offline"; an authorization failure
// still proves the network is up.
type Probe func(ctx context.Context) error

// NetworkMonitor tracks remote reachability and publishes transitions.
type NetworkMonitor struct {
	probe    Probe
	interval time.Duration
	online   atomic.Bool

	mu          sync.Mutex
	subscribers []func(online bool)

	logger *logger.Logger
}

// NewNetworkMonitor starts in the offline state until the first [Check].
func NewNetworkMonitor(probe Probe, interval time.Duration, log *logger.Logger) *NetworkMonitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &NetworkMonitor{probe: probe, interval: interval, logger: log}
}

func (m *NetworkMonitor) Online() bool {
	return m.online.Load()
}

// Subscribe registers fn for online/offline transitions. fn runs on the
// goroutine that observed the change.
func (m *NetworkMonitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Check runs the probe once and returns the new state.
func (m *NetworkMonitor) Check(ctx context.Context) bool {
	online := true
	if m.probe != nil {
		if err := m.probe(ctx); err != nil && adapter.IsRetryable(err) {
			online = false
		}
	}
	m.set(online)
	return online
}

// ReportFailure marks the remote offline when err is temporary.
func (m *NetworkMonitor) ReportFailure(err error) {
	if adapter.IsRetryable(err) {
		m.set(false)
	}
}

// SetOnline overrides the state, e.g. for a forced offline mode.
func (m *NetworkMonitor) SetOnline(online bool) {
	m.set(online)
}

// Run probes every interval until ctx is done.
func (m *NetworkMonitor) Run(ctx context.Context) error {
	m.Check(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.Check(ctx)
		}
	}
}

func (m *NetworkMonitor) set(online bool) {
	if m.online.Swap(online) == online {
		return
	}

	m.logger.Info().Str("func", "NetworkMonitor.set").Bool("online", online).Msg("connectivity changed")

	m.mu.Lock()
	subs := append(([]func(bool))(nil), m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}
