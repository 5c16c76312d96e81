package ingest

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"picsema/internal/caption"
	"picsema/internal/history"
	"picsema/internal/logger"
	"picsema/internal/metrics"
	"picsema/internal/model"
)

// Captioner produces tags and a description for an image.
type Captioner interface {
	Analyze(ctx context.Context, imageBytes []byte) (caption.Analysis, error)
	Model() string
}

// Embedder turns image bytes into a fixed-dimension vector.
type Embedder interface {
	EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error)
	Dim() int
}

// RecordStore persists a finished record into the metric collections.
type RecordStore interface {
	Upsert(ctx context.Context, record *model.ImageRecord) error
}

// Geocoder resolves GPS coordinates to a human-readable place name.
type Geocoder interface {
	ReverseLookup(ctx context.Context, lat, lon float64) (string, error)
}

// Archiver keeps the original image bytes in object storage.
type Archiver interface {
	Store(ctx context.Context, imageID, ext string, data []byte, contentType string) error
}

// Recorder appends ingestion outcomes to the audit ledger.
type Recorder interface {
	RecordIngest(ctx context.Context, entry history.IngestEntry) error
	RecordBatch(ctx context.Context, directory string, report *model.BatchReport) error
}

// EventSink emits an event for every successfully ingested record.
type EventSink interface {
	PublishIngested(ctx context.Context, record *model.ImageRecord) error
}

// Tracer opens spans around the pipeline stages.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
}

// Service runs the ingestion pipeline: authorize, extract metadata, caption,
// embed, persist, then enrich with the optional archive, ledger and event
// integrations.
type Service struct {
	cfg        *Config
	authorizer *Authorizer
	captioner  Captioner
	embedder   Embedder
	store      RecordStore

	// Optional integrations; any of these may be nil.
	geocoder Geocoder
	archive  Archiver
	ledger   Recorder
	events   EventSink
	metrics  *metrics.Metrics
	tracer   Tracer

	logger *logger.Logger
}

// Params collects the dependencies of the ingestion service. Geocoder,
// Archive, Ledger, Events, Metrics and Tracer are optional.
type Params struct {
	Config    *Config
	Captioner Captioner
	Embedder  Embedder
	Store     RecordStore
	Geocoder  Geocoder
	Archive   Archiver
	Ledger    Recorder
	Events    EventSink
	Metrics   *metrics.Metrics
	Tracer    Tracer
	Logger    *logger.Logger
}

// NewService validates the configuration and builds the pipeline.
func NewService(p Params) (*Service, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	if p.Captioner == nil || p.Embedder == nil || p.Store == nil {
		return nil, fmt.Errorf("ingest: captioner, embedder and store are required")
	}

	authorizer, err := NewAuthorizer(p.Config.AllowedRoots)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:        p.Config,
		authorizer: authorizer,
		captioner:  p.Captioner,
		embedder:   p.Embedder,
		store:      p.Store,
		geocoder:   p.Geocoder,
		archive:    p.Archive,
		ledger:     p.Ledger,
		events:     p.Events,
		metrics:    p.Metrics,
		tracer:     p.Tracer,
		logger:     p.Logger,
	}, nil
}
