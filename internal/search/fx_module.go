package search

import (
	"go.uber.org/fx"

	"picsema/internal/embedding"
	"picsema/internal/logger"
	"picsema/internal/metrics"
	"picsema/internal/tracer"
	"picsema/internal/vectorstore"
)

// FXModule wires the search service into an Fx application.
//
// Dependencies required from the container: the embedding client, the
// vectorstore store and a *logger.Logger. Metrics and tracer are optional.
var FXModule = fx.Module("search",
	fx.Provide(newServiceForFx),
)

type serviceDeps struct {
	fx.In

	Embedder *embedding.Client
	Store    *vectorstore.Store
	Metrics  *metrics.Metrics `optional:"true"`
	Tracer   *tracer.Tracer   `optional:"true"`
	Logger   *logger.Logger
}

func newServiceForFx(deps serviceDeps) (*Service, error) {
	// A typed nil must not end up inside a non-nil Tracer interface.
	var tr Tracer
	if deps.Tracer != nil {
		tr = deps.Tracer
	}
	return NewService(deps.Embedder, deps.Store, deps.Metrics, tr, deps.Logger)
}
