package logger

import "os"

// Level is the minimum severity the logger emits.
type Level string

const (
	Debug   Level = "debug"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Config holds logger settings.
type Config struct {
	// Level is the minimum log level. Defaults to Info.
	Level Level

	// ServiceName is attached to every log entry as the "service" field.
	ServiceName string
}

// NewConfig reads logger settings from environment variables.
func NewConfig() Config {
	level := Level(os.Getenv("LOG_LEVEL"))
	switch level {
	case Debug, Info, Warning, Error:
	default:
		level = Info
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "picsema"
	}

	return Config{
		Level:       level,
		ServiceName: service,
	}
}
