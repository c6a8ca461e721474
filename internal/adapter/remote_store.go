package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// NewRemoteStore builds the [RemoteStore] selected by cfg.Backend.
func NewRemoteStore(ctx context.Context, cfg config.Adapter, log *logger.Logger) (RemoteStore, error) {
	switch cfg.Backend {
	case config.BackendHTTP, "":
		return NewHTTPRemoteStore(cfg, log)
	case config.BackendPostgres:
		return NewPostgresRemoteStore(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown adapter backend %q", cfg.Backend)
	}
}
