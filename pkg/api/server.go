package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cbodonnell/snek/pkg/api/handlers"
	"github.com/cbodonnell/snek/pkg/api/middleware"
	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/network"
	"github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/state"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Addr         string
	TLS          *TLSConfig
	StateManager state.StateManager
	// Repository serves the run history. Optional.
	Repository repositories.Repository
	// Hub serves the live frame stream. Optional.
	Hub *network.Hub
}

// NewAPIServer creates a new http.Server for the game endpoints
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    opts.Addr,
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the handler tree served by the APIServer.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.NewRecoverMiddleware(), middleware.NewLoggingMiddleware())

	router.Handle("/snake", gzhttp.GzipHandler(handlers.HandleGetSnake(opts.StateManager))).Methods(http.MethodGet)
	router.Handle("/snake", handlers.HandlePostDirection(opts.StateManager)).Methods(http.MethodPost)
	router.Handle("/snake/{direction}", handlers.HandleGetDirection(opts.StateManager)).Methods(http.MethodGet)
	router.Handle("/healthz", handlers.HandleHealth()).Methods(http.MethodGet)

	if opts.Repository != nil {
		router.Handle("/runs", gzhttp.GzipHandler(handlers.HandleListRuns(opts.Repository))).Methods(http.MethodGet)
		router.Handle("/runs/{id}", handlers.HandleGetRun(opts.Repository)).Methods(http.MethodGet)
	}

	// the websocket upgrade must not go through gzip
	if opts.Hub != nil {
		router.HandleFunc("/ws", opts.Hub.ServeStream).Methods(http.MethodGet)
	}

	return router
}

// Start starts the APIServer and blocks until it is stopped
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return err
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
