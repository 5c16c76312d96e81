package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the logger into an Fx application.
//
// It provides *Logger (via NewLoggerClient) and registers a shutdown hook
// that flushes buffered log entries.
//
// Dependencies required from the container: a logger.Config value.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle syncs the Zap logger on application shutdown so
// buffered entries are not lost.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL on some platforms; nothing
			// actionable can be done with it at shutdown.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
