package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.build); err != nil {
		logger.FromContext(r.Context()).Err(err).Str("func", "Handler.getVersion").Msg("failed to write build info")
	}
}

// getStatus answers 200 whenever the status can be read, offline or not;
// monitoring decides what "offline with 12 queued" means.
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	status, err := h.status.Status(r.Context())
	if err != nil {
		log.Err(errors.Join(ErrStatusUnavailable, err)).Str("func", "Handler.getStatus").Send()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(status); err != nil {
		log.Err(err).Str("func", "Handler.getStatus").Msg("failed to write status")
	}
}
