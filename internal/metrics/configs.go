package metrics

import "os"

// DefaultAddress is used when no listen address is configured.
const DefaultAddress = ":9090"

// Config controls the Prometheus metrics endpoint.
type Config struct {
	// Address is the network address the /metrics HTTP server listens on,
	// e.g. ":9090" or "127.0.0.1:9100".
	Address string

	// ServiceName is attached as a constant "service" label to every
	// metric, so multiple services can share one Prometheus cluster.
	ServiceName string

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors alongside the application metrics.
	EnableDefaultCollectors bool
}

// NewConfig reads the metrics configuration from the environment.
func NewConfig() *Config {
	cfg := &Config{
		Address:                 DefaultAddress,
		ServiceName:             "picsema",
		EnableDefaultCollectors: true,
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if os.Getenv("METRICS_DISABLE_DEFAULT_COLLECTORS") != "" {
		cfg.EnableDefaultCollectors = false
	}
	return cfg
}
