package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseOTLPProtocol(t *testing.T) {
	for _, value := range []string{"", "grpc", " GRPC "} {
		protocol, err := parseOTLPProtocol(value)
		require.NoError(t, err, value)
		assert.Equal(t, otlpProtocolGRPC, protocol)
	}

	for _, value := range []string{"http", "http/protobuf", "HTTP/Protobuf"} {
		protocol, err := parseOTLPProtocol(value)
		require.NoError(t, err, value)
		assert.Equal(t, otlpProtocolHTTP, protocol)
	}

	_, err := parseOTLPProtocol("thrift")
	assert.Error(t, err)
}

func TestSamplerForRatio(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerForRatio(0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerForRatio(-0.5).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerForRatio(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerForRatio(2).Description())

	partial := samplerForRatio(0.25)
	assert.Contains(t, partial.Description(), "0.25")
}

func TestIsHTTPEndpointURL(t *testing.T) {
	assert.True(t, isHTTPEndpointURL("http://collector:4318"))
	assert.True(t, isHTTPEndpointURL("https://collector:4318"))
	assert.False(t, isHTTPEndpointURL("collector:4318"))
}

func TestBuildResourceCarriesServiceAttributes(t *testing.T) {
	res, err := buildResource(Config{
		ServiceName:    "stitchql",
		ServiceVersion: "1.2.3",
		Environment:    "staging",
	})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "stitchql", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
	assert.Equal(t, "staging", attrs["deployment.environment"])
}
