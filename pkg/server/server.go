// Package server exposes reconciliation reports over HTTP.
//
// Every request runs a fresh list-mode reconciliation; nothing is cached
// between requests.
//
//	GET /healthz                     liveness and build version
//	GET /api/v1/packages             full report
//	GET /api/v1/packages/upgradable  report restricted to upgradable crates
//
// Reports are JSON unless the request asks for ?format=yaml.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/crateup/pkg/buildinfo"
	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/output"
	"github.com/matzehuels/crateup/pkg/reconcile"
)

const (
	requestTimeout  = 2 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// Inventory produces a fresh report per call.
type Inventory interface {
	Inventory(ctx context.Context) (*reconcile.Report, error)
}

// NewRouter returns the HTTP handler serving reports from inv.
func NewRouter(inv Inventory, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	h := &handler{inv: inv, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.health)
	r.Route("/api/v1/packages", func(r chi.Router) {
		r.Get("/", h.packages(false))
		r.Get("/upgradable", h.packages(true))
	})
	return r
}

type handler struct {
	inv    Inventory
	logger *log.Logger
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (h *handler) packages(upgradableOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := output.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, err)
			return
		}

		rep, err := h.inv.Inventory(r.Context())
		if err != nil {
			h.logger.Error("inventory failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
			writeError(w, err)
			return
		}
		if upgradableOnly {
			rep = rep.Filter()
		}

		if format == output.FormatYAML {
			w.Header().Set("Content-Type", "application/yaml")
			w.WriteHeader(http.StatusOK)
			_ = output.WriteYAML(w, rep)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = output.WriteJSON(w, v)
}

func writeError(w http.ResponseWriter, err error) {
	code := cerrors.GetCode(err)
	if code == "" {
		code = cerrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code, err), map[string]string{
		"code":  string(code),
		"error": cerrors.UserMessage(err),
	})
}

func statusFor(code cerrors.Code, err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case code == cerrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case code == cerrors.ErrCodeManagerNotFound, code == cerrors.ErrCodeManagerFailed:
		return http.StatusServiceUnavailable
	case code.Lookup():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Server is an HTTP server with graceful shutdown.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like [Server.Run] but accepts an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving reports", "addr", ln.Addr().String())
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
