package http

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

// StatusReporter is implemented by the running client.
type StatusReporter interface {
	Status(ctx context.Context) (models.ClientStatus, error)
}

type Handler struct {
	status StatusReporter
	build  models.AppBuildInfo

	logger *logger.Logger
}

func NewHandler(status StatusReporter, build models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		status: status,
		build:  build,
		logger: logger,
	}
}
