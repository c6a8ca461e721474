package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

var errNoAddress = errors.New("no listen address configured")

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// HTTPServer serves handler until the context passed to Run is done.
type HTTPServer struct {
	addr   string
	server *http.Server
	ready  chan net.Addr
	logger *logger.Logger
}

func NewHTTPServer(addr string, handler http.Handler, logger *logger.Logger) *HTTPServer {
	return &HTTPServer{
		addr: addr,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		ready:  make(chan net.Addr, 1),
		logger: logger,
	}
}

// Ready yields the bound address once the listener is open. Useful with
// port 0.
func (h *HTTPServer) Ready() <-chan net.Addr {
	return h.ready
}

// Run implements workers.Worker.
func (h *HTTPServer) Run(ctx context.Context) error {
	if h.addr == "" {
		return errNoAddress
	}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.addr, err)
	}
	h.ready <- ln.Addr()
	h.logger.Info().Str("func", "HTTPServer.Run").Str("addr", ln.Addr().String()).Msg("launching HTTP server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- h.server.Serve(ln)
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = h.server.Shutdown(shutdownCtx); err != nil {
		h.logger.Err(err).Str("func", "HTTPServer.Run").Msg("HTTP server shutdown failed")
		return fmt.Errorf("shutdown: %w", err)
	}

	h.logger.Info().Str("func", "HTTPServer.Run").Msg("HTTP server shut down gracefully")
	return nil
}
