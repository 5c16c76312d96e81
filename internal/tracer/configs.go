package tracer

import "os"

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName identifies this service in exported traces.
	ServiceName string

	// AppEnv tags spans with the deployment environment, e.g. "production".
	AppEnv string

	// EnableExport sends spans to an OTLP HTTP collector. The collector
	// endpoint is taken from the standard OTEL_EXPORTER_OTLP_* variables.
	// When disabled, spans are still created but never leave the process.
	EnableExport bool
}

// NewConfig reads the tracer configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		ServiceName: "picsema",
		AppEnv:      "development",
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	if os.Getenv("TRACE_EXPORT_ENABLED") == "true" {
		cfg.EnableExport = true
	}
	return cfg
}
