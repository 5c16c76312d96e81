package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"

	"picsema/internal/logger"
	"picsema/internal/metrics"
	"picsema/internal/model"
)

// Embedder turns queries into vectors in the same space the images were
// indexed in.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error)
}

// VectorSearcher serves per-metric similarity queries.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, metrics []model.Metric, limit uint64) (*model.SearchResponse, error)
}

// Tracer opens spans around the embed and fan-out phases of a search.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
}

// Request describes one similarity search. Zero-value Metrics means all of
// them; zero Limit falls back to the default.
type Request struct {
	Metrics []model.Metric
	Limit   uint64

	// Tags post-filters results to records carrying every requested tag.
	Tags []string
}

// Service answers text and image similarity queries. The query is embedded
// once and fanned out to the requested metric collections.
type Service struct {
	embedder Embedder
	searcher VectorSearcher
	metrics  *metrics.Metrics
	tracer   Tracer
	logger   *logger.Logger
}

// NewService builds the search service. Metrics and tracer may be nil.
func NewService(embedder Embedder, searcher VectorSearcher, m *metrics.Metrics, tr Tracer, log *logger.Logger) (*Service, error) {
	if embedder == nil || searcher == nil {
		return nil, fmt.Errorf("search: embedder and searcher are required")
	}
	return &Service{embedder: embedder, searcher: searcher, metrics: m, tracer: tr, logger: log}, nil
}

// ByText searches with a natural-language query.
func (s *Service) ByText(ctx context.Context, query string, req Request) (*model.SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("search: query must not be empty")
	}
	ctx, end := s.span(ctx, "search.text")
	start := time.Now()

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.count("text", "error")
		err = fmt.Errorf("search: failed to embed query: %w", err)
		end(err)
		return nil, err
	}

	resp, err := s.run(ctx, vector, req)
	s.observe("text", start, err)
	end(err)
	return resp, err
}

// ByImage searches with an example image.
func (s *Service) ByImage(ctx context.Context, imageBytes []byte, req Request) (*model.SearchResponse, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("search: image must not be empty")
	}
	ctx, end := s.span(ctx, "search.image")
	start := time.Now()

	vector, err := s.embedder.EmbedImage(ctx, imageBytes)
	if err != nil {
		s.count("image", "error")
		err = fmt.Errorf("search: failed to embed image: %w", err)
		end(err)
		return nil, err
	}

	resp, err := s.run(ctx, vector, req)
	s.observe("image", start, err)
	end(err)
	return resp, err
}

// span opens a tracing span when a tracer is configured. The returned end
// function records err on the span and must always be called.
func (s *Service) span(ctx context.Context, name string) (context.Context, func(error)) {
	if s.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, sp := s.tracer.StartSpan(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			s.tracer.RecordErrorOnSpan(sp, err)
		}
		sp.End()
	}
}

func (s *Service) run(ctx context.Context, vector []float32, req Request) (*model.SearchResponse, error) {
	resp, err := s.searcher.Search(ctx, vector, req.Metrics, req.Limit)
	if err != nil {
		return nil, err
	}
	if len(req.Tags) > 0 {
		for metric, results := range resp.ByMetric {
			resp.ByMetric[metric] = filterByTags(results, req.Tags)
		}
	}
	if len(resp.Degraded) > 0 {
		s.logger.Warn("search degraded, some metrics unavailable", nil, map[string]interface{}{
			"degraded": len(resp.Degraded),
		})
	}
	return resp, nil
}

// filterByTags keeps results whose records carry every requested tag.
// Matching is case-insensitive; ranking order is preserved.
func filterByTags(results []model.QueryResult, tags []string) []model.QueryResult {
	wanted := lo.Map(tags, func(tag string, _ int) string {
		return strings.ToLower(strings.TrimSpace(tag))
	})
	return lo.Filter(results, func(result model.QueryResult, _ int) bool {
		indexed := lo.SliceToMap(result.Record.AITags, func(tag string) (string, struct{}) {
			return strings.ToLower(tag), struct{}{}
		})
		return lo.EveryBy(wanted, func(tag string) bool {
			_, ok := indexed[tag]
			return ok
		})
	})
}

func (s *Service) count(kind, status string) {
	if s.metrics != nil {
		s.metrics.IncrementSearches(kind, status)
	}
}

func (s *Service) observe(kind string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.IncrementSearches(kind, status)
	s.metrics.RecordSearchDuration(start, kind)
}
