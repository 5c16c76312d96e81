package tracer

import (
	"context"

	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires distributed tracing into an Fx application.
//
// It provides *Tracer and registers a shutdown hook that flushes pending
// spans to the exporter before the process exits.
//
// Dependencies required from the container: a tracer.Config value and a
// *logger.Logger.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer provider down when the
// application stops so buffered spans reach the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, t *Tracer, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down tracer", nil, nil)
			if t.provider == nil {
				return nil
			}
			return t.provider.Shutdown(ctx)
		},
	})
}
