package vectorstore

import (
	"context"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires the multi-metric store into an Fx application.
//
// It provides the Qdrant SDK client and the *Store, creates the metric
// collections on startup, and closes the gRPC connection on shutdown.
//
// Dependencies required from the container: a *vectorstore.Config value and
// a *logger.Logger.
var FXModule = fx.Module("vectorstore",
	fx.Provide(
		NewQdrantClient,
		newStoreForFx,
	),
	fx.Invoke(RegisterStoreLifecycle),
)

func newStoreForFx(client *qdrant.Client, cfg *Config, log *logger.Logger) *Store {
	return NewStore(client, cfg, log)
}

// RegisterStoreLifecycle ensures the metric collections exist before the
// application starts serving and closes the client connection on shutdown.
func RegisterStoreLifecycle(lc fx.Lifecycle, client *qdrant.Client, store *Store, cfg *Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureCollections(ctx, uint64(cfg.Dim))
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
