package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// Server exposes the liveness endpoints and Prometheus metrics. It runs
// on its own goroutine and shares no locks with the sync paths, so a
// long backfill never blocks a health probe.
type Server struct {
	config *Config
	logger *zap.Logger
	Srv    *http.Server
}

func New(config *Config, logger *zap.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
		Srv: &http.Server{
			Addr: fmt.Sprintf("%s:%d", config.Host, config.Port),
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.Srv.Handler = router

	logger := s.logger.Sugar()
	logger.Infof("API server listening on %s:%d", s.config.Host, s.config.Port)
	return s.Srv.ListenAndServe()
}

func (s *Server) Shutdown() error {
	return s.Srv.Shutdown(context.Background())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}
