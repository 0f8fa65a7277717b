package gateway

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stitchql/internal/config"
	"stitchql/internal/logging"
	"stitchql/internal/middleware"
	"stitchql/internal/observability"
)

// BuildHandler assembles the route table and middleware chain. The GraphQL
// endpoint gets request metrics; logging, CORS, and tracing wrap every
// route.
func BuildHandler(cfg *config.Config, g *Gateway, logger *logging.Logger, metrics *observability.GraphQLMetrics) http.Handler {
	mux := http.NewServeMux()

	graphqlHandler := middleware.GraphQLMetricsMiddleware(metrics)(g.GraphQLHandler())
	mux.Handle("/graphql", graphqlHandler)
	mux.Handle("/healthz", g.HealthHandler())
	if cfg.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(middleware.CORSConfig{
		Enabled:        cfg.Server.CORSEnabled,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AllowedMethods: cfg.Server.CORSAllowedMethods,
		AllowedHeaders: cfg.Server.CORSAllowedHeaders,
		MaxAge:         cfg.Server.CORSMaxAge,
	})(handler)
	handler = middleware.LoggingMiddleware(logger)(handler)
	if cfg.Observability.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "stitchql")
	}
	return handler
}

// NewServer creates the HTTP server with the configured timeouts.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
