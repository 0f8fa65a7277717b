package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gqlhandler "github.com/graphql-go/handler"

	"stitchql/internal/engine"
	"stitchql/internal/logging"
	"stitchql/internal/merge"
)

// Gateway serves a merged schema over HTTP.
type Gateway struct {
	schema          *merge.Schema
	logger          *logging.Logger
	requestTimeout  time.Duration
	graphiqlEnabled bool
	graphiql        http.Handler
}

// New creates a gateway for a merged schema. requestTimeout of zero
// disables the per-request deadline.
func New(schema *merge.Schema, logger *logging.Logger, requestTimeout time.Duration, graphiqlEnabled bool) *Gateway {
	g := &Gateway{
		schema:          schema,
		logger:          logger,
		requestTimeout:  requestTimeout,
		graphiqlEnabled: graphiqlEnabled,
	}
	if graphiqlEnabled {
		gqlSchema := schema.Schema()
		g.graphiql = gqlhandler.New(&gqlhandler.Config{
			Schema:   &gqlSchema,
			Pretty:   true,
			GraphiQL: true,
		})
	}
	return g
}

// GraphQLHandler decodes the request envelope, executes it against the
// merged schema, and writes the JSON response. GET requests from a browser
// are routed to the GraphiQL UI when it is enabled; the UI itself posts
// back to this handler, so its queries run through the engine.
func (g *Gateway) GraphQLHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.graphiql != nil && r.Method == http.MethodGet && acceptsHTML(r) {
			g.graphiql.ServeHTTP(w, r)
			return
		}

		req, err := DecodeEnvelope(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ctx := r.Context()
		if g.requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
			defer cancel()
		}
		ctx = engine.WithClientData(ctx, engine.ClientData{
			RequestID:  logging.GetRequestID(ctx),
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})

		resp := engine.Execute(ctx, g.schema, req)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.FromContext(ctx).Error("failed to write response",
				slog.String("error", err.Error()),
			)
		}
	})
}

// HealthHandler reports liveness.
func (g *Gateway) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": err.Error()}},
	})
}
