package service

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-konan-sdk/internal/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server is the KonanService HTTP handler for one model.
type Server[In, Out any] struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.ServiceConfig
	model    Model[In, Out]
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *requestMetrics
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption[In, Out any] func(*Server[In, Out])

func WithLogger[In, Out any](logger zerolog.Logger) ServerOption[In, Out] {
	return func(s *Server[In, Out]) {
		s.logger = logger
	}
}

// New builds the handler and registers its routes.
func New[In, Out any](model Model[In, Out], cfg config.ServiceConfig, options ...ServerOption[In, Out]) (*Server[In, Out], error) {
	if model == nil {
		return nil, errors.New("[service.New] model is required")
	}
	if cfg == nil {
		return nil, errors.New("[service.New] config is required")
	}

	s := &Server[In, Out]{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		model:    model,
		logger:   log.Logger,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range options {
		opt(s)
	}

	m, err := newRequestMetrics(s.registry)
	if err != nil {
		return nil, errors.Wrap(err, "[service.New] failed to register metrics")
	}
	s.metrics = m

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server[In, Out]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server[In, Out]) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server[In, Out]) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns.
func (s *Server[In, Out]) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server[In, Out]) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Info().Msg(formatRoute(method, path))
	}
}

func formatRoute(method, path string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	return fmt.Sprintf("[%s] %s", methodColor(method).Sprint(paddedMethod), path)
}
