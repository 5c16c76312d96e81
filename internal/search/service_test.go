package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"picsema/internal/logger"
	"picsema/internal/model"
)

type fakeEmbedder struct {
	vector []float32
	err    error

	textCalls  int
	imageCalls int
}

func (f *fakeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	f.textCalls++
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedImage(_ context.Context, _ []byte) ([]float32, error) {
	f.imageCalls++
	return f.vector, f.err
}

type fakeSearcher struct {
	resp  *model.SearchResponse
	err   error
	calls int

	gotVector  []float32
	gotMetrics []model.Metric
	gotLimit   uint64
}

func (f *fakeSearcher) Search(_ context.Context, vector []float32, metrics []model.Metric, limit uint64) (*model.SearchResponse, error) {
	f.calls++
	f.gotVector = vector
	f.gotMetrics = metrics
	f.gotLimit = limit
	return f.resp, f.err
}

type fakeTracer struct {
	spans []string
	errs  int
}

func (f *fakeTracer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	f.spans = append(f.spans, name)
	return ctx, trace.SpanFromContext(ctx)
}

func (f *fakeTracer) RecordErrorOnSpan(_ trace.Span, _ error) {
	f.errs++
}

func result(id string, score float32, tags ...string) model.QueryResult {
	return model.QueryResult{
		ImageID: id,
		Record:  model.ImageRecord{ImageID: id, AITags: tags},
		Score:   score,
	}
}

func newService(t *testing.T, embedder *fakeEmbedder, searcher *fakeSearcher) *Service {
	t.Helper()
	s, err := NewService(embedder, searcher, nil, nil, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)
	return s
}

func TestByTextEmbedsOnceAndFansOut(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	searcher := &fakeSearcher{resp: &model.SearchResponse{
		ByMetric: map[model.Metric][]model.QueryResult{
			model.MetricCosine: {result("img-1", 0.9, "cat")},
			model.MetricEuclid: {result("img-1", 1.4, "cat")},
		},
	}}
	s := newService(t, embedder, searcher)

	resp, err := s.ByText(context.Background(), "a cat on a couch", Request{
		Metrics: model.AllMetrics(),
		Limit:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.textCalls, "query embedded exactly once")
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, []float32{0.1, 0.2}, searcher.gotVector)
	assert.Equal(t, uint64(5), searcher.gotLimit)
	assert.Len(t, resp.ByMetric, 2)
}

func TestByImageEmbedsOnce(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.3, 0.4}}
	searcher := &fakeSearcher{resp: &model.SearchResponse{
		ByMetric: map[model.Metric][]model.QueryResult{
			model.MetricDot: {result("img-2", 12.0)},
		},
	}}
	s := newService(t, embedder, searcher)

	resp, err := s.ByImage(context.Background(), []byte{0xFF, 0xD8}, Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.imageCalls)
	assert.Len(t, resp.ByMetric, 1)
}

func TestByTextRejectsEmptyQuery(t *testing.T) {
	s := newService(t, &fakeEmbedder{}, &fakeSearcher{})
	_, err := s.ByText(context.Background(), "", Request{})
	require.Error(t, err)
}

func TestByImageRejectsEmptyImage(t *testing.T) {
	s := newService(t, &fakeEmbedder{}, &fakeSearcher{})
	_, err := s.ByImage(context.Background(), nil, Request{})
	require.Error(t, err)
}

func TestByTextPropagatesEmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedder down")}
	searcher := &fakeSearcher{}
	s := newService(t, embedder, searcher)

	_, err := s.ByText(context.Background(), "cat", Request{})
	require.Error(t, err)
	assert.Zero(t, searcher.calls, "no search without a query vector")
}

func TestSearchOpensSpans(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	searcher := &fakeSearcher{resp: &model.SearchResponse{
		ByMetric: map[model.Metric][]model.QueryResult{
			model.MetricCosine: {result("img-1", 0.9)},
		},
	}}
	ft := &fakeTracer{}
	s, err := NewService(embedder, searcher, nil, ft, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)

	_, err = s.ByText(context.Background(), "cat", Request{})
	require.NoError(t, err)
	_, err = s.ByImage(context.Background(), []byte{0xFF}, Request{})
	require.NoError(t, err)

	assert.Equal(t, []string{"search.text", "search.image"}, ft.spans)
	assert.Zero(t, ft.errs)
}

func TestSearchRecordsSpanErrorOnEmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedder down")}
	ft := &fakeTracer{}
	s, err := NewService(embedder, &fakeSearcher{}, nil, ft, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)

	_, err = s.ByText(context.Background(), "cat", Request{})
	require.Error(t, err)
	assert.Equal(t, 1, ft.errs)
}

func TestTagFilterKeepsMatchingResultsInOrder(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	searcher := &fakeSearcher{resp: &model.SearchResponse{
		ByMetric: map[model.Metric][]model.QueryResult{
			model.MetricCosine: {
				result("img-1", 0.95, "cat", "couch"),
				result("img-2", 0.90, "dog"),
				result("img-3", 0.85, "cat", "garden"),
			},
		},
	}}
	s := newService(t, embedder, searcher)

	resp, err := s.ByText(context.Background(), "cat", Request{Tags: []string{"CAT"}})
	require.NoError(t, err)

	results := resp.ByMetric[model.MetricCosine]
	require.Len(t, results, 2)
	assert.Equal(t, "img-1", results[0].ImageID)
	assert.Equal(t, "img-3", results[1].ImageID)
}

func TestTagFilterRequiresAllTags(t *testing.T) {
	results := []model.QueryResult{
		result("img-1", 0.9, "cat", "couch"),
		result("img-2", 0.8, "cat"),
	}
	filtered := filterByTags(results, []string{"cat", "couch"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "img-1", filtered[0].ImageID)
}
