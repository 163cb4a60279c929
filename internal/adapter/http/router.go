package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

type Router struct {
	handler  *Handler
	log      *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewRouter serves /metrics from gatherer, normally prometheus.DefaultGatherer.
func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer) *Router {
	return &Router{
		handler:  handler,
		log:      log,
		metrics:  metrics,
		gatherer: gatherer,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		path := routePattern(req)
		if path != "/metrics" {
			duration := time.Since(start).Seconds()
			r.metrics.HTTPRequestDuration.WithLabelValues(path, req.Method).Observe(duration)
			r.metrics.HTTPRequestsTotal.WithLabelValues(path, req.Method, fmt.Sprintf("%dxx", crw.statusCode/100)).Inc()
		}

		r.log.Info("HTTP request",
			"request_id", middleware.GetReqID(req.Context()),
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", time.Since(start),
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

// routePattern labels metrics by the matched chi route so path parameters
// and unknown paths do not blow up label cardinality.
func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(r.loggingMiddleware)
	mux.Use(middleware.Recoverer)

	mux.Route("/api/v1", func(api chi.Router) {
		api.Get("/state", r.handler.GetStateHandler)
		api.Put("/selection", r.handler.UpdateSelectionHandler)
		api.Put("/period", r.handler.ChangePeriodHandler)
		api.Post("/refresh", r.handler.RefreshHandler)

		api.Get("/config", r.handler.GetConfigHandler)
		api.Put("/config", r.handler.UpdateConfigHandler)

		api.Get("/prices", r.handler.GetPricesHandler)
		api.Get("/history", r.handler.GetHistoryHandler)
		api.Get("/assets", r.handler.GetAssetsHandler)
	})

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	return mux
}
