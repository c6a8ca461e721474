package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

type httpRemoteStore struct {
	client *utils.HTTPClient

	// token is swapped on login/logout while the network monitor probes
	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// saltBody is the wire shape of the salt endpoints. encoding/json encodes
// []byte as standard base64.
type saltBody struct {
	Salt []byte `json:"salt"`
}

// NewHTTPRemoteStore constructs the REST implementation of [RemoteStore].
// Routes, relative to cfg.HTTPAddress:
//
//	POST   /api/owners/{owner}/notes
//	GET    /api/owners/{owner}/notes
//	GET    /api/owners/{owner}/notes/{id}
//	PUT    /api/owners/{owner}/notes/{id}
//	DELETE /api/owners/{owner}/notes/{id}
//	GET    /api/owners/{owner}/salt
//	PUT    /api/owners/{owner}/salt
//
// Returns an error if cfg.HTTPAddress is empty or is not a valid URL.
func NewHTTPRemoteStore(cfg config.Adapter, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpRemoteStore{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteStore) authToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteStore) Create(ctx context.Context, ownerID string, note models.CipherNote) (string, error) {
	var created models.CipherNote

	resp, err := h.request(ctx, ownerID).
		SetBody(note).
		SetResult(&created).
		Post("/api/owners/{owner}/notes")
	if err != nil {
		return "", mapTransportError("create note", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteStore.Create").Str("note_id", note.ID).Msg("remote rejected note")
		return "", err
	}

	if created.ID == "" {
		return "", fmt.Errorf("%w: create note: empty id", ErrInvalidResponse)
	}
	return created.ID, nil
}

func (h *httpRemoteStore) Update(ctx context.Context, ownerID, noteID string, note models.CipherNote) error {
	note.ID = noteID

	resp, err := h.request(ctx, ownerID).
		SetPathParam("id", noteID).
		SetBody(note).
		Put("/api/owners/{owner}/notes/{id}")
	if err != nil {
		return mapTransportError("update note", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteStore.Update").Str("note_id", noteID).Msg("remote rejected update")
		return err
	}

	return nil
}

func (h *httpRemoteStore) Delete(ctx context.Context, ownerID, noteID string) error {
	resp, err := h.request(ctx, ownerID).
		SetPathParam("id", noteID).
		Delete("/api/owners/{owner}/notes/{id}")
	if err != nil {
		return mapTransportError("delete note", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) List(ctx context.Context, ownerID string) ([]models.CipherNote, error) {
	var notes []models.CipherNote

	resp, err := h.request(ctx, ownerID).
		SetResult(&notes).
		Get("/api/owners/{owner}/notes")
	if err != nil {
		return nil, mapTransportError("list notes", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	for i := range notes {
		notes[i].OwnerID = ownerID
		notes[i].SyncStatus = models.SyncStatusSynced
	}
	return notes, nil
}

func (h *httpRemoteStore) Get(ctx context.Context, ownerID, noteID string) (models.CipherNote, error) {
	var note models.CipherNote

	resp, err := h.request(ctx, ownerID).
		SetPathParam("id", noteID).
		SetResult(&note).
		Get("/api/owners/{owner}/notes/{id}")
	if err != nil {
		return models.CipherNote{}, mapTransportError("get note", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.CipherNote{}, err
	}

	note.OwnerID = ownerID
	note.SyncStatus = models.SyncStatusSynced
	return note, nil
}

func (h *httpRemoteStore) GetSalt(ctx context.Context, ownerID string) ([]byte, error) {
	var body saltBody

	resp, err := h.request(ctx, ownerID).
		SetResult(&body).
		Get("/api/owners/{owner}/salt")
	if err != nil {
		return nil, mapTransportError("get salt", err)
	}
	if err = mapHTTPError(resp); err != nil {
		// no salt stored yet
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if len(body.Salt) == 0 {
		return nil, nil
	}
	return body.Salt, nil
}

func (h *httpRemoteStore) SaveSalt(ctx context.Context, ownerID string, salt []byte) error {
	resp, err := h.request(ctx, ownerID).
		SetBody(saltBody{Salt: salt}).
		Put("/api/owners/{owner}/salt")
	if err != nil {
		return mapTransportError("save salt", err)
	}

	return mapHTTPError(resp)
}

// request prepares an authenticated JSON request scoped to the owner.
func (h *httpRemoteStore) request(ctx context.Context, ownerID string) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("owner", ownerID)

	if token := h.authToken(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
