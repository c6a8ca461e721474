package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/session"
)

const defaultSyncInterval = 30 * time.Second

// SyncJob drains the queue of one session in the background: every interval
// while the remote store is reachable, and right away whenever the network
// monitor reports an offline->online transition.
type SyncJob struct {
	syncService SyncService
	sess        *session.Session
	monitor     *NetworkMonitor
	interval    time.Duration

	wake chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates an idle job. Zero or negative interval defaults to 30s.
func NewSyncJob(syncService SyncService, sess *session.Session, monitor *NetworkMonitor, interval time.Duration) *SyncJob {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j := &SyncJob{
		syncService: syncService,
		sess:        sess,
		monitor:     monitor,
		interval:    interval,
		wake:        make(chan struct{}, 1),
	}

	monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		select {
		case j.wake <- struct{}{}:
		default:
			// a drain is already requested
		}
	})

	return j
}

// Run blocks until ctx is done.
func (j *SyncJob) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.wake:
			j.drain(ctx)
		case <-t.C:
			if j.monitor.Online() {
				j.drain(ctx)
			}
		}
	}
}

func (j *SyncJob) drain(ctx context.Context) {
	log := j.sess.Logger()

	report, err := j.syncService.SyncWithRemote(ctx, j.sess)
	if err != nil {
		log.Err(err).Str("func", "SyncJob.drain").Msg("background drain failed")
		return
	}
	if report.Failed > 0 {
		j.monitor.Check(ctx)
	}
}

// Start runs the job on its own goroutine, stopping a previous run first.
func (j *SyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		_ = j.Run(jobCtx)
	}()
}

// Stop cancels the goroutine started by Start and waits for it to exit.
// Safe to call when the job is not running.
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
