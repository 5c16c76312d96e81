package history

import (
	"context"

	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires the ingestion ledger into an Fx application.
//
// The ledger is optional: when no DATABASE_URL is configured, a nil *Ledger
// is provided and callers must treat it as disabled.
var FXModule = fx.Module("history",
	fx.Provide(newLedgerForFx),
	fx.Invoke(RegisterLedgerLifecycle),
)

func newLedgerForFx(cfg Config, log *logger.Logger) (*Ledger, error) {
	if !cfg.Enabled() {
		log.Info("ingestion ledger disabled, no database configured", nil, nil)
		return nil, nil
	}
	return NewLedger(context.Background(), cfg, log)
}

// RegisterLedgerLifecycle closes the connection pool on shutdown.
func RegisterLedgerLifecycle(lc fx.Lifecycle, l *Ledger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if l != nil {
				l.Close()
			}
			return nil
		},
	})
}
