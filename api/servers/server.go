package servers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ruteri/sequencer-seeder/api"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/common"
	"github.com/ruteri/sequencer-seeder/metrics"
	"go.uber.org/atomic"
)

// Server runs the internal and external JSON-RPC listeners and the metrics
// listener of one seeder.
type Server struct {
	cfg     *api.HTTPServerConfig
	isReady atomic.Bool
	log     *slog.Logger

	externalRPC *jsonrpc.Server
	internalRPC *jsonrpc.Server

	externalSrv *http.Server
	internalSrv *http.Server
	metricsSrv  *metrics.MetricsServer
}

// New creates a server exposing handler's method tables.
func New(cfg *api.HTTPServerConfig, handler *handlers.Handler) (*Server, error) {
	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:         cfg,
		log:         cfg.Log,
		metricsSrv:  metricsSrv,
		externalRPC: jsonrpc.NewServer("external", handler.ExternalMethods(), handlers.ErrorFor, cfg.Log),
		internalRPC: jsonrpc.NewServer("internal", handler.InternalMethods(), handlers.ErrorFor, cfg.Log),
	}
	srv.isReady.Store(true)

	srv.externalSrv = &http.Server{
		Addr:         cfg.ExternalListenAddr,
		Handler:      srv.ExternalRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	srv.internalSrv = &http.Server{
		Addr:         cfg.InternalListenAddr,
		Handler:      srv.InternalRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

// ExternalRouter serves the public JSON-RPC surface and the probes.
func (srv *Server) ExternalRouter() http.Handler {
	mux := chi.NewRouter()
	mux.With(srv.httpLogger).Post("/", srv.externalRPC.ServeHTTP)
	srv.mountProbes(mux)
	return mux
}

// InternalRouter serves the operator JSON-RPC surface, the probes and, when
// enabled, pprof.
func (srv *Server) InternalRouter() http.Handler {
	mux := chi.NewRouter()
	mux.With(srv.httpLogger).Post("/", srv.internalRPC.ServeHTTP)
	srv.mountProbes(mux)

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

func (srv *Server) mountProbes(mux chi.Router) {
	mux.With(srv.httpLogger).Get("/livez", srv.handleLivenessCheck)
	mux.With(srv.httpLogger).Get("/readyz", srv.handleReadinessCheck)
	mux.With(srv.httpLogger).Get("/drain", srv.handleDrain)
	mux.With(srv.httpLogger).Get("/undrain", srv.handleUndrain)
}

func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(body))
}

func (srv *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, `{"status":"alive"}`)
}

func (srv *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Load() {
		writeStatus(w, http.StatusServiceUnavailable, `{"status":"not ready"}`)
		return
	}
	writeStatus(w, http.StatusOK, `{"status":"ready"}`)
}

func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Swap(false) {
		writeStatus(w, http.StatusOK, `{"status":"already draining"}`)
		return
	}

	srv.log.Info("Server marked as not ready")

	// Load balancers need the drain period to notice
	go func() {
		time.Sleep(srv.cfg.DrainDuration)
		srv.log.Info("Drain period completed")
	}()

	writeStatus(w, http.StatusOK, `{"status":"draining"}`)
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if srv.isReady.Swap(true) {
		writeStatus(w, http.StatusOK, `{"status":"already ready"}`)
		return
	}

	srv.log.Info("Server marked as ready")
	writeStatus(w, http.StatusOK, `{"status":"ready"}`)
}

// RunInBackground starts all listeners. Listener failures are logged.
func (srv *Server) RunInBackground() {
	if srv.cfg.MetricsAddr != "" {
		go func() {
			srv.log.With("metricsAddress", srv.cfg.MetricsAddr).Info("Starting metrics server")
			err := srv.metricsSrv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("HTTP server failed", "err", err)
			}
		}()
	}

	for _, s := range []struct {
		name string
		srv  *http.Server
	}{
		{"external", srv.externalSrv},
		{"internal", srv.internalSrv},
	} {
		go func() {
			srv.log.Info("Starting HTTP server", "surface", s.name, "listenAddress", s.srv.Addr)
			if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("HTTP server failed", "surface", s.name, "err", err)
			}
		}()
	}
}

// Shutdown stops all listeners, waiting up to GracefulShutdownDuration for
// in-flight requests on each.
func (srv *Server) Shutdown() {
	for name, s := range map[string]*http.Server{"external": srv.externalSrv, "internal": srv.internalSrv} {
		ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
		if err := s.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful HTTP server shutdown failed", "surface", name, "err", err)
		} else {
			srv.log.Info("HTTP server gracefully stopped", "surface", name)
		}
		cancel()
	}

	if len(srv.cfg.MetricsAddr) != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
		defer cancel()

		if err := srv.metricsSrv.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful metrics server shutdown failed", "err", err)
		} else {
			srv.log.Info("Metrics server gracefully stopped")
		}
	}
}
