package vectorstore

import (
	"context"
	"fmt"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/errgroup"

	"picsema/internal/model"
)

// Search queries the requested metric collections in parallel with the same
// vector and returns the per-metric result lists. Metrics whose query failed
// are reported as degraded; the call only errors when every metric fails.
func (s *Store) Search(ctx context.Context, vector []float32, metrics []model.Metric, limit uint64) (*model.SearchResponse, error) {
	if len(vector) != s.cfg.Dim {
		return nil, fmt.Errorf("vectorstore: query vector has %d dimensions, want %d: %w",
			len(vector), s.cfg.Dim, ErrDimensionMismatch)
	}
	if len(metrics) == 0 {
		metrics = model.AllMetrics()
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	resp := &model.SearchResponse{
		ByMetric: make(map[model.Metric][]model.QueryResult, len(metrics)),
	}

	var mu sync.Mutex
	var firstErr error
	g, gctx := errgroup.WithContext(ctx)

	for _, m := range metrics {
		metric := m
		g.Go(func() error {
			results, err := s.queryMetric(gctx, metric, vector, limit)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Degraded = append(resp.Degraded, metric)
				if firstErr == nil {
					firstErr = err
				}
				s.logger.Warn("metric query failed", err, map[string]interface{}{
					"metric": string(metric),
				})
				return nil
			}
			resp.ByMetric[metric] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(resp.ByMetric) == 0 {
		return nil, fmt.Errorf("vectorstore: all metric queries failed: %w: %w", ErrQueryFailed, firstErr)
	}
	return resp, nil
}

func (s *Store) queryMetric(ctx context.Context, metric model.Metric, vector []float32, limit uint64) ([]model.QueryResult, error) {
	points, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName(s.cfg.BaseCollection, metric),
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.QueryResult, 0, len(points))
	for _, point := range points {
		record := model.RecordFromPayload(payloadToMap(point.GetPayload()))
		results = append(results, model.QueryResult{
			ImageID: record.ImageID,
			Record:  record,
			Score:   point.GetScore(),
			Metric:  metric,
		})
	}
	return results, nil
}
