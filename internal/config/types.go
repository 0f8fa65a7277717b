// Package config loads and validates gateway configuration from flags,
// environment variables, and an optional config file.
package config

import "time"

// Config is the complete gateway configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	GraphiQLEnabled  bool          `mapstructure:"graphiql_enabled"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	CORSEnabled      bool          `mapstructure:"cors_enabled"`
	CORSAllowedOrigins []string    `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods []string    `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders []string    `mapstructure:"cors_allowed_headers"`
	CORSMaxAge       int           `mapstructure:"cors_max_age"`
}

// ObservabilityConfig holds metrics, tracing, and logging settings.
type ObservabilityConfig struct {
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	MetricsEnabled   bool          `mapstructure:"metrics_enabled"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	Logging          LoggingConfig `mapstructure:"logging"`
	OTLP             OTLPConfig    `mapstructure:"otlp"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	ExportsEnabled bool   `mapstructure:"exports_enabled"`
}

// OTLPConfig holds OTLP exporter settings shared by traces and logs.
type OTLPConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Protocol string        `mapstructure:"protocol"`
	Insecure bool          `mapstructure:"insecure"`
	Timeout  time.Duration `mapstructure:"timeout"`
}
