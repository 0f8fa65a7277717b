package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Observability: ObservabilityConfig{
			TraceSampleRatio: 0.25,
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	result := validConfig().Validate()
	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidatePortRange(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := validConfig()
		cfg.Server.Port = port

		result := cfg.Validate()
		require.False(t, result.Valid(), "port %d", port)
		assert.Contains(t, result.Errors[0], "server.port")
	}
}

func TestValidateCORSWithoutOriginsWarns(t *testing.T) {
	cfg := validConfig()
	cfg.Server.CORSEnabled = true

	result := cfg.Validate()
	assert.True(t, result.Valid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "cors_allowed_origins")
}

func TestValidateLoggingEnums(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.Logging.Level = "verbose"
	cfg.Observability.Logging.Format = "xml"

	result := cfg.Validate()
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "logging.level")
	assert.Contains(t, result.Errors[1], "logging.format")
}

func TestValidateTraceSampleRatioRange(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.TraceSampleRatio = 1.5

	result := cfg.Validate()
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "trace_sample_ratio")
}

func TestValidateOTLPProtocol(t *testing.T) {
	for _, protocol := range []string{"", "grpc", "http", "http/protobuf", " GRPC "} {
		cfg := validConfig()
		cfg.Observability.OTLP.Protocol = protocol
		assert.True(t, cfg.Validate().Valid(), "protocol %q", protocol)
	}

	cfg := validConfig()
	cfg.Observability.OTLP.Protocol = "thrift"
	result := cfg.Validate()
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "otlp.protocol")
}

func TestValidateEndpointRequiredForExports(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.TracingEnabled = true

	result := cfg.Validate()
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "otlp.endpoint")

	cfg.Observability.OTLP.Endpoint = "collector:4317"
	assert.True(t, cfg.Validate().Valid())

	cfg = validConfig()
	cfg.Observability.Logging.ExportsEnabled = true
	assert.False(t, cfg.Validate().Valid())
}
