// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package consoleserver implements the public status HTTP API.
package consoleserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/filipe-posio-devlop/Uptimer/console"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/private/timerange"
)

const (
	contentType = "Content-Type"

	applicationJSON = "application/json"
)

var (
	// Error is the status console web error class.
	Error = errs.Class("status console web error")

	mon = monkit.Package()
)

// Config contains configuration for the status console web server.
type Config struct {
	Address string `help:"server address of the public status api" default:":8480"`
}

// Server represents the status console web server.
//
// architecture: Endpoint
type Server struct {
	log *zap.Logger

	config   Config
	service  *console.Service
	listener net.Listener

	server http.Server
}

// NewServer creates a new instance of the status console web server.
func NewServer(logger *zap.Logger, config Config, service *console.Service, listener net.Listener) *Server {
	server := Server{
		log:      logger,
		config:   config,
		service:  service,
		listener: listener,
	}

	router := mux.NewRouter()
	router.HandleFunc("/status", server.statusHandler).Methods(http.MethodGet)
	router.HandleFunc("/monitors/{id}/latency", server.latencyHandler).Methods(http.MethodGet)
	router.HandleFunc("/monitors/{id}/uptime", server.uptimeHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", server.healthHandler).Methods(http.MethodGet)

	server.server = http.Server{
		Handler: router,
	}

	return &server
}

// Run starts the server that hosts the public status api.
func (server *Server) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		return Error.Wrap(server.server.Shutdown(context.Background()))
	})
	group.Go(func() error {
		defer cancel()
		err := server.server.Serve(server.listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return Error.Wrap(err)
	})

	return group.Wait()
}

// Close closes the server and underlying listener.
func (server *Server) Close() error {
	return Error.Wrap(server.server.Close())
}

// Addr returns the address the server is serving on.
func (server *Server) Addr() string {
	return server.listener.Addr().String()
}

// statusHandler serves the fleet status document.
func (server *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer mon.Task()(&ctx)(nil)

	status, err := server.service.FleetStatus(ctx)
	if err != nil {
		server.serveInternalError(w, "fleet status failed", err)
		return
	}

	server.writeData(w, status)
}

// latencyHandler serves a monitor's latency profile.
func (server *Server) latencyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer mon.Task()(&ctx)(nil)

	id, ok := server.monitorID(w, r)
	if !ok {
		return
	}
	keyword, err := timerange.Parse(r.URL.Query().Get("range"), timerange.Day, timerange.Day)
	if err != nil {
		server.serveError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid range")
		return
	}

	report, err := server.service.MonitorLatency(ctx, id, keyword)
	if err != nil {
		if monitor.ErrNoMonitor.Has(err) {
			server.serveError(w, http.StatusNotFound, "NOT_FOUND", "Monitor not found")
			return
		}
		server.serveInternalError(w, "latency report failed", err)
		return
	}

	server.writeData(w, report)
}

// uptimeHandler serves a monitor's availability breakdown.
func (server *Server) uptimeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer mon.Task()(&ctx)(nil)

	id, ok := server.monitorID(w, r)
	if !ok {
		return
	}
	keyword, err := timerange.Parse(r.URL.Query().Get("range"), timerange.Day,
		timerange.Day, timerange.Week, timerange.Month)
	if err != nil {
		server.serveError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid range")
		return
	}

	report, err := server.service.MonitorUptime(ctx, id, keyword)
	if err != nil {
		if monitor.ErrNoMonitor.Has(err) {
			server.serveError(w, http.StatusNotFound, "NOT_FOUND", "Monitor not found")
			return
		}
		server.serveInternalError(w, "uptime report failed", err)
		return
	}

	server.writeData(w, report)
}

// healthHandler confirms datastore connectivity.
func (server *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer mon.Task()(&ctx)(nil)

	health, err := server.service.Health(ctx)
	if err != nil {
		server.serveInternalError(w, "health check failed", err)
		return
	}

	server.writeData(w, health)
}

// monitorID parses the id path variable, serving a 400 when it is not a
// positive integer.
func (server *Server) monitorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		server.serveError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid monitor id")
		return 0, false
	}
	return id, true
}

// apiError is the structured body of every non-200 response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeData writes the document as JSON and logs encoding failures.
func (server *Server) writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		server.log.Error("failed to write json response", zap.Error(Error.Wrap(err)))
	}
}

// serveError writes a structured JSON error and logs encoding failures.
func (server *Server) serveError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiError{Code: code, Message: message}); err != nil {
		server.log.Error("failed to write json error", zap.Error(Error.Wrap(err)))
	}
}

// serveInternalError logs the cause and serves a generic 500. Datastore
// errors never leak into response bodies.
func (server *Server) serveInternalError(w http.ResponseWriter, message string, err error) {
	server.log.Error(message, zap.Error(Error.Wrap(err)))
	server.serveError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
