// Package gateway exposes the merged schema over HTTP: request decoding,
// the /graphql endpoint backed by the engine, GraphiQL, health, and
// metrics routes.
package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"stitchql/internal/engine"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// DecodeEnvelope extracts a GraphQL request from an HTTP request. POST
// bodies carry the standard JSON envelope; GET requests carry query,
// variables, and operationName as URL parameters.
func DecodeEnvelope(r *http.Request) (engine.Request, error) {
	switch r.Method {
	case http.MethodPost:
		return decodePost(r)
	case http.MethodGet:
		return decodeGet(r)
	default:
		return engine.Request{}, fmt.Errorf("method %s is not supported", r.Method)
	}
}

func decodePost(r *http.Request) (engine.Request, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return engine.Request{}, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return engine.Request{}, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/graphql") {
		return engine.Request{Query: string(body)}, nil
	}

	var req engine.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return engine.Request{}, fmt.Errorf("invalid request envelope: %w", err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return engine.Request{}, fmt.Errorf("request envelope has no query")
	}
	return req, nil
}

func decodeGet(r *http.Request) (engine.Request, error) {
	values := r.URL.Query()
	req := engine.Request{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
	}
	if strings.TrimSpace(req.Query) == "" {
		return engine.Request{}, fmt.Errorf("query parameter is required")
	}
	if raw := values.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return engine.Request{}, fmt.Errorf("invalid variables parameter: %w", err)
		}
	}
	return req, nil
}
