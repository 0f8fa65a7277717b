package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddlewareDisabledPassesThrough(t *testing.T) {
	handler := CORSMiddleware(CORSConfig{Enabled: false})(okHandler())

	r := httptest.NewRequest("GET", "/graphql", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	handler := CORSMiddleware(CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})(okHandler())

	r := httptest.NewRequest("OPTIONS", "/graphql", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "300", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORSMiddlewareUnknownOrigin(t *testing.T) {
	handler := CORSMiddleware(CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://example.com"},
	})(okHandler())

	r := httptest.NewRequest("GET", "/graphql", nil)
	r.Header.Set("Origin", "https://evil.test")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareWildcardOrigin(t *testing.T) {
	handler := CORSMiddleware(CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
	})(okHandler())

	r := httptest.NewRequest("GET", "/graphql", nil)
	r.Header.Set("Origin", "https://anywhere.test")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestOperationTypeRestoresBody(t *testing.T) {
	body := `{"query":"mutation { create }"}`
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))

	assert.Equal(t, "mutation", requestOperationType(r))

	restored := make([]byte, len(body))
	n, err := r.Body.Read(restored)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored[:n]))
}

func TestOperationType(t *testing.T) {
	assert.Equal(t, "query", operationType("{ ccp { id } }", ""))
	assert.Equal(t, "mutation", operationType("mutation { create }", ""))
	assert.Equal(t, "query", operationType("mutation A { create } query B { ccp }", "B"))
	assert.Equal(t, "unknown", operationType("mutation A { create }", "missing"))
	assert.Equal(t, "unknown", operationType("{ broken", ""))
}

func TestResponseHasGraphQLErrors(t *testing.T) {
	assert.False(t, responseHasGraphQLErrors(nil))
	assert.False(t, responseHasGraphQLErrors([]byte(`{"data":{"ccp":null}}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`{"data":null,"errors":null}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`{"errors":[]}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`not json`)))
	assert.True(t, responseHasGraphQLErrors([]byte(`{"data":null,"errors":[{"message":"boom"}]}`)))
}

func TestMetricsResponseWriterCapturesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	w := &metricsResponseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

	w.WriteHeader(http.StatusBadRequest)
	w.WriteHeader(http.StatusOK) // later calls are ignored
	_, err := w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.statusCode)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.True(t, responseHasGraphQLErrors(w.body.Bytes()))
}
