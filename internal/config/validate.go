package config

import (
	"fmt"
	"strings"
)

// ValidationResult collects validation errors and warnings. Errors prevent
// startup; warnings are logged and startup continues.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the configuration can be used.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		result.errorf("server.port %d is out of valid range (1-65535)", c.Server.Port)
	}
	if c.Server.CORSEnabled && len(c.Server.CORSAllowedOrigins) == 0 {
		result.warnf("server.cors_enabled is true but server.cors_allowed_origins is empty; all cross-origin requests will be rejected")
	}

	switch c.Observability.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		result.errorf("observability.logging.level %q is not one of debug, info, warn, error", c.Observability.Logging.Level)
	}
	switch c.Observability.Logging.Format {
	case "json", "text":
	default:
		result.errorf("observability.logging.format %q is not one of json, text", c.Observability.Logging.Format)
	}

	if ratio := c.Observability.TraceSampleRatio; ratio < 0 || ratio > 1 {
		result.errorf("observability.trace_sample_ratio %v is out of range (0.0-1.0)", ratio)
	}
	switch strings.ToLower(strings.TrimSpace(c.Observability.OTLP.Protocol)) {
	case "", "grpc", "http", "http/protobuf":
	default:
		result.errorf("observability.otlp.protocol %q is not one of grpc, http/protobuf", c.Observability.OTLP.Protocol)
	}
	if (c.Observability.TracingEnabled || c.Observability.Logging.ExportsEnabled) && strings.TrimSpace(c.Observability.OTLP.Endpoint) == "" {
		result.errorf("observability.otlp.endpoint is required when tracing or log export is enabled")
	}

	return result
}
