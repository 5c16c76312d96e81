package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires the Prometheus metrics server into an Fx application.
//
// It provides *Metrics and registers lifecycle hooks that start the
// /metrics HTTP server on boot and shut it down gracefully.
//
// Dependencies required from the container: a *metrics.Config value and a
// *logger.Logger.
var FXModule = fx.Module("metrics",
	fx.Provide(NewMetrics),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle starts the metrics HTTP server in the background
// when the application boots and shuts it down on stop.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server failed", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
