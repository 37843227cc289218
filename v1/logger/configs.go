package logger

import "os"

// Level names accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level that gets emitted.
	// One of the Debug/Info/Warning/Error constants. Default: Info.
	Level string

	// ServiceName is attached to every entry as the constant "service" field.
	ServiceName string
}

// NewConfig reads the logger configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		Level:       os.Getenv("ZAP_LOGGER_LEVEL"),
		ServiceName: os.Getenv("LOGGER_SERVICE_NAME"),
	}
	if cfg.Level == "" {
		cfg.Level = Info
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "aesthetic"
	}
	return cfg
}
