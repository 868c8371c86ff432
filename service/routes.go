package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes served to the Konan platform
const (
	RouteHealthz  = "/healthz"
	RoutePredict  = "/predict"
	RouteEvaluate = "/evaluate"
	RouteMetrics  = "/metrics"
)

func (s *Server[In, Out]) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealthz, ChainMiddleware(s.healthzHandler, s.APIMiddleware(RouteHealthz)...))
	s.RegisterRouteFunc("POST "+RoutePredict, ChainMiddleware(s.predictHandler, s.APIMiddleware(RoutePredict)...))
	s.RegisterRouteFunc("POST "+RouteEvaluate, ChainMiddleware(s.evaluateHandler, s.APIMiddleware(RouteEvaluate)...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// browser preflight for cross-origin JSON posts
	s.RegisterRouteFunc("OPTIONS "+RoutePredict, ChainMiddleware(s.preflightHandler, s.RequestIDMiddleware, s.CorsMiddleware))
	s.RegisterRouteFunc("OPTIONS "+RouteEvaluate, ChainMiddleware(s.preflightHandler, s.RequestIDMiddleware, s.CorsMiddleware))
}

func (s *Server[In, Out]) APIMiddleware(route string) []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RequestIDMiddleware,
		s.LoggingMiddleware,
		s.MetricsMiddleware(route),
		s.RecoverMiddleware,
		s.CorsMiddleware,
	}
}
