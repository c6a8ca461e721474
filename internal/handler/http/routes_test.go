package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/metrics"
	"github.com/MKhiriev/go-note-keeper/models"
)

type stubStatus struct {
	status models.ClientStatus
	err    error
}

func (s stubStatus) Status(context.Context) (models.ClientStatus, error) {
	return s.status, s.err
}

func newTestHandler(status StatusReporter, log *logger.Logger) *Handler {
	return NewHandler(status, models.NewAppBuildInfo("1.4.0", "2026-10-16", "abc"), log)
}

func serve(h *Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)
	return rr
}

func TestRoutes_Healthz(t *testing.T) {
	want := models.ClientStatus{OwnerID: "owner", Online: false, Queued: 3}
	h := newTestHandler(stubStatus{status: want}, logger.Nop())

	rr := serve(h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got models.ClientStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestRoutes_HealthzUnavailable(t *testing.T) {
	h := newTestHandler(stubStatus{err: errors.New("store closed")}, logger.Nop())

	rr := serve(h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestRoutes_Version(t *testing.T) {
	h := newTestHandler(stubStatus{}, logger.Nop())

	rr := serve(h, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.4.0","date":"2026-10-16","commit":"abc"}`, rr.Body.String())
}

func TestRoutes_Metrics(t *testing.T) {
	metrics.RecordDrain(0, 2)
	h := newTestHandler(stubStatus{}, logger.Nop())

	rr := serve(h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "notekeeper_sync_queue_depth 2")
}

func TestRoutes_UnknownPathAndMethod(t *testing.T) {
	h := newTestHandler(stubStatus{}, logger.Nop())

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nope"},
		{name: "wrong method on known path", method: http.MethodPost, path: "/healthz"},
		{name: "delete version", method: http.MethodDelete, path: "/version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestWithTraceID(t *testing.T) {
	h := newTestHandler(stubStatus{}, logger.Nop())

	rr := serve(h, http.MethodGet, "/version", http.Header{traceIDHeader: []string{"my-trace"}})
	assert.Equal(t, "my-trace", rr.Header().Get(traceIDHeader))

	rr = serve(h, http.MethodGet, "/version", nil)
	_, err := uuid.Parse(rr.Header().Get(traceIDHeader))
	assert.NoError(t, err)
}

func TestWithLogging_WritesAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := &logger.Logger{Logger: zerolog.New(&buf)}
	h := newTestHandler(stubStatus{}, log)

	rr := serve(h, http.MethodGet, "/version", http.Header{traceIDHeader: []string{"trace-1"}})
	require.Equal(t, http.StatusOK, rr.Code)

	out := buf.String()
	assert.Contains(t, out, `"uri":"/version"`)
	assert.Contains(t, out, `"method":"GET"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, fmt.Sprintf(`"size":%d`, rr.Body.Len()))
	assert.Contains(t, out, `"trace_id":"trace-1"`)
}
