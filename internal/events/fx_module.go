package events

import (
	"context"

	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires the event publisher into an Fx application.
//
// The publisher is optional: when no RABBIT_URL is configured, a nil
// *Publisher is provided and callers must treat it as disabled.
var FXModule = fx.Module("events",
	fx.Provide(newPublisherForFx),
	fx.Invoke(RegisterPublisherLifecycle),
)

func newPublisherForFx(cfg Config, log *logger.Logger) (*Publisher, error) {
	if !cfg.Enabled() {
		log.Info("event publisher disabled, no broker configured", nil, nil)
		return nil, nil
	}
	return NewPublisher(cfg, log)
}

// RegisterPublisherLifecycle closes the broker connection on shutdown.
func RegisterPublisherLifecycle(lc fx.Lifecycle, p *Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if p != nil {
				return p.Close()
			}
			return nil
		},
	})
}
