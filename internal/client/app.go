package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/app"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	handlerhttp "github.com/MKhiriev/go-note-keeper/internal/handler/http"
	"github.com/MKhiriev/go-note-keeper/internal/identity"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/server"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/session"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/tui"
	"github.com/MKhiriev/go-note-keeper/internal/workers"
	"github.com/MKhiriev/go-note-keeper/models"
)

const logoutTimeout = 10 * time.Second

type App struct {
	cfg      config.ClientConfig
	storages *store.ClientStorages
	remote   adapter.RemoteStore
	broker   *identity.Broker
	monitor  *service.NetworkMonitor
	services *service.Services
	password PasswordReader
	logger   *logger.Logger

	mu          sync.RWMutex
	sess        *session.Session
	logoutErr   error
	unsubscribe func()
}

// NewApp opens the local storages and the configured remote store.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, *cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create local storages: %w", err)
	}

	remote, err := adapter.NewRemoteStore(ctx, cfg.Adapter, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	return newApp(*cfg, storages, remote, tui.ReadPassword, log), nil
}

func newApp(cfg config.ClientConfig, storages *store.ClientStorages, remote adapter.RemoteStore, password PasswordReader, log *logger.Logger) *App {
	a := &App{
		cfg:      cfg,
		storages: storages,
		remote:   remote,
		broker:   identity.NewBroker(),
		password: password,
		logger:   log,
	}

	a.monitor = service.NewNetworkMonitor(a.probe, 0, log)
	a.services = service.NewServices(cfg, remote, a.monitor)
	a.unsubscribe = a.broker.OnIdentityChange(a.onIdentityChange)

	return a
}

// Login publishes the identity carried by the configured token.
func (a *App) Login() error {
	if a.cfg.App.Token == "" {
		return app.ErrNotSignedIn
	}
	_, err := a.broker.Login(a.cfg.App.Token)
	return err
}

// Logout publishes the logout and returns the outcome of the local wipe.
func (a *App) Logout() error {
	if a.broker.Current() == nil {
		return app.ErrNotSignedIn
	}
	a.broker.Logout()

	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.logoutErr
	a.logoutErr = nil
	return err
}

func (a *App) onIdentityChange(id *models.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id == nil {
		if a.sess == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()

		a.logoutErr = a.services.KeyService.Logout(ctx, a.sess)
		a.sess = nil
		a.remote.SetToken("")
		return
	}

	a.remote.SetToken(id.Token)
	keys := session.NewKeyManager(a.storages.SessionCache, a.cfg.Session.KeyTTL, a.logger)
	a.sess = session.New(id.OwnerID, keys, a.storages.Local, a.logger)
	a.logger.Info().Str("func", "App.onIdentityChange").Str("owner_id", id.OwnerID).Msg("session started")
}

// Session returns the current session or ErrNotSignedIn.
func (a *App) Session() (*session.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.sess == nil {
		return nil, app.ErrNotSignedIn
	}
	return a.sess, nil
}

// Online probes the remote store once.
func (a *App) Online(ctx context.Context) bool {
	return a.monitor.Check(ctx)
}

// Unlock makes sure the session holds a key, asking for the password only
// when neither memory nor the session cache has one.
func (a *App) Unlock(ctx context.Context) (*session.Session, error) {
	sess, err := a.Session()
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Keys().GetKey(ctx); ok {
		return sess, nil
	}

	password, err := a.password("Password: ")
	if err != nil {
		return nil, err
	}

	if err = a.services.KeyService.Unlock(ctx, sess, password, a.Online(ctx)); err != nil {
		return nil, err
	}
	return sess, nil
}

// Status reports the last known connectivity; it does not probe.
func (a *App) Status(ctx context.Context) (models.ClientStatus, error) {
	sess, err := a.Session()
	if err != nil {
		return models.ClientStatus{}, err
	}

	queued, err := a.services.SyncService.PendingCount(ctx, sess)
	if err != nil {
		return models.ClientStatus{}, err
	}

	return models.ClientStatus{
		OwnerID:  sess.OwnerID(),
		Online:   a.monitor.Online(),
		Queued:   queued,
		Degraded: sess.Degraded(),
	}, nil
}

// Watch runs the network monitor and the background sync job until ctx is
// done, plus the status endpoint when an address is configured.
func (a *App) Watch(ctx context.Context, build models.AppBuildInfo) error {
	sess, err := a.Unlock(ctx)
	if err != nil {
		return err
	}

	job := service.NewSyncJob(a.services.SyncService, sess, a.monitor, a.cfg.Workers.SyncInterval)

	ws := workers.NewWorkers(a.logger).
		Add("network-monitor", a.monitor).
		Add("sync-job", job)

	if addr := a.cfg.Workers.StatusAddress; addr != "" {
		handler := handlerhttp.NewHandler(a, build, a.logger)
		ws.Add("status-server", server.NewHTTPServer(addr, handler.Init(), a.logger))
	}

	return ws.Run(ctx)
}

func (a *App) Services() *service.Services {
	return a.services
}

// Close releases the stores. The session, if any, stays cached for the
// next run.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.storages.Close()
}

// probe checks the remote with the cheapest owner-scoped call.
func (a *App) probe(ctx context.Context) error {
	id := a.broker.Current()
	if id == nil {
		return nil
	}

	_, err := a.remote.GetSalt(ctx, id.OwnerID)
	if err != nil && !adapter.IsRetryable(err) {
		a.logger.Warn().Err(err).Str("func", "App.probe").Msg("remote answered with an error")
	}
	return err
}
