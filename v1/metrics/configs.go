package metrics

import "os"

// Config controls the metrics registry and HTTP server.
type Config struct {
	// Address is the listen address of the /metrics server.
	// Default: ":9090".
	Address string

	// ServiceName is applied to every metric as the constant "service" label.
	ServiceName string

	// EnableDefaultCollectors registers the standard Go, process, and build
	// info collectors alongside the library's own instruments.
	EnableDefaultCollectors bool
}

// NewConfig reads the metrics configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		Address:                 os.Getenv("METRICS_ADDRESS"),
		ServiceName:             os.Getenv("METRICS_SERVICE_NAME"),
		EnableDefaultCollectors: os.Getenv("METRICS_ENABLE_DEFAULT_COLLECTORS") != "false",
	}
	if cfg.Address == "" {
		cfg.Address = ":9090"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "aesthetic"
	}
	return cfg
}
