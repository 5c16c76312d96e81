package ingest

import (
	"go.uber.org/fx"

	"picsema/internal/archive"
	"picsema/internal/caption"
	"picsema/internal/embedding"
	"picsema/internal/events"
	"picsema/internal/geocode"
	"picsema/internal/history"
	"picsema/internal/logger"
	"picsema/internal/metrics"
	"picsema/internal/tracer"
	"picsema/internal/vectorstore"
)

// FXModule wires the ingestion pipeline into an Fx application.
//
// Dependencies required from the container: *ingest.Config, the caption,
// embedding and vectorstore clients, and a *logger.Logger. The geocoder,
// archive, ledger, event publisher, metrics and tracer are picked up when
// present.
var FXModule = fx.Module("ingest",
	fx.Provide(newServiceForFx),
)

type serviceDeps struct {
	fx.In

	Config    *Config
	Captioner *caption.Client
	Embedder  *embedding.Client
	Store     *vectorstore.Store
	Geocoder  *geocode.Client   `optional:"true"`
	Archive   *archive.Archive  `optional:"true"`
	Ledger    *history.Ledger   `optional:"true"`
	Events    *events.Publisher `optional:"true"`
	Metrics   *metrics.Metrics  `optional:"true"`
	Tracer    *tracer.Tracer    `optional:"true"`
	Logger    *logger.Logger
}

func newServiceForFx(deps serviceDeps) (*Service, error) {
	params := Params{
		Config:    deps.Config,
		Captioner: deps.Captioner,
		Embedder:  deps.Embedder,
		Store:     deps.Store,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger,
	}
	// Typed nils must not end up inside non-nil interfaces.
	if deps.Geocoder != nil {
		params.Geocoder = deps.Geocoder
	}
	if deps.Archive != nil {
		params.Archive = deps.Archive
	}
	if deps.Ledger != nil {
		params.Ledger = deps.Ledger
	}
	if deps.Events != nil {
		params.Events = deps.Events
	}
	if deps.Tracer != nil {
		params.Tracer = deps.Tracer
	}
	return NewService(params)
}
