package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"picsema/internal/logger"
	"picsema/internal/model"
)

// fakePointsAPI is an in-memory stand-in for the Qdrant SDK. Failures can
// be scripted per collection and per call to drive the reconciliation paths.
type fakePointsAPI struct {
	mu sync.Mutex

	collections map[string]uint64           // name -> dimension
	points      map[string]map[string][]any // collection -> image id -> payload marker
	queryHits   map[string][]*qdrant.ScoredPoint

	upsertFailures map[string]int // collection -> remaining scripted failures
	deleteFailures map[string]int
	queryFailures  map[string]int

	upsertCalls []string
	deleteCalls []string
	queryLimits []uint64
}

func newFakePointsAPI() *fakePointsAPI {
	return &fakePointsAPI{
		collections:    make(map[string]uint64),
		points:         make(map[string]map[string][]any),
		queryHits:      make(map[string][]*qdrant.ScoredPoint),
		upsertFailures: make(map[string]int),
		deleteFailures: make(map[string]int),
		queryFailures:  make(map[string]int),
	}
}

func (f *fakePointsAPI) CollectionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakePointsAPI) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dim := req.GetVectorsConfig().GetParams().GetSize()
	f.collections[req.GetCollectionName()] = dim
	return nil
}

func (f *fakePointsAPI) GetCollectionInfo(_ context.Context, name string) (*qdrant.CollectionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dim, ok := f.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s not found", name)
	}
	count := uint64(len(f.points[name]))
	return &qdrant.CollectionInfo{
		PointsCount: &count,
		Config: &qdrant.CollectionConfig{
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     dim,
					Distance: qdrant.Distance_Cosine,
				}),
			},
		},
	}, nil
}

func (f *fakePointsAPI) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := req.GetCollectionName()
	f.upsertCalls = append(f.upsertCalls, name)
	if f.upsertFailures[name] > 0 {
		f.upsertFailures[name]--
		return nil, errors.New("scripted upsert failure")
	}
	if f.points[name] == nil {
		f.points[name] = make(map[string][]any)
	}
	for _, p := range req.GetPoints() {
		f.points[name][p.GetId().GetUuid()] = nil
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePointsAPI) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := req.GetCollectionName()
	f.deleteCalls = append(f.deleteCalls, name)
	if f.deleteFailures[name] > 0 {
		f.deleteFailures[name]--
		return nil, errors.New("scripted delete failure")
	}
	// The store deletes by image_id payload match; the fake keys points by
	// id, which is the same value.
	if filter := req.GetPoints().GetFilter(); filter != nil {
		for _, cond := range filter.GetMust() {
			id := cond.GetField().GetMatch().GetKeyword()
			delete(f.points[name], id)
		}
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePointsAPI) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := req.GetCollectionName()
	f.queryLimits = append(f.queryLimits, req.GetLimit())
	if f.queryFailures[name] > 0 {
		f.queryFailures[name]--
		return nil, errors.New("scripted query failure")
	}
	return f.queryHits[name], nil
}

func (f *fakePointsAPI) has(collection, imageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.points[collection][imageID]
	return ok
}

func testStore(t *testing.T, api *fakePointsAPI) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dim = 4
	return NewStore(api, cfg, &logger.Logger{Zap: zap.NewNop()})
}

func testRecord() *model.ImageRecord {
	return &model.ImageRecord{
		ImageID:             model.NewImageID(),
		FilePath:            "/photos/cat.jpg",
		FileName:            "cat.jpg",
		FileSize:            2048,
		Width:               64,
		Height:              48,
		Format:              "JPEG",
		AITags:              []string{"cat", "couch"},
		AIDescription:       "a cat on a couch",
		ModelUsed:           "test-model",
		Embedding:           []float32{0.1, 0.2, 0.3, 0.4},
		EmbeddingDim:        4,
		ProcessingTimestamp: time.Now().UTC(),
		SourceType:          model.SourceUpload,
	}
}

func TestEnsureCollectionsCreatesAllMetrics(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)

	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	for _, name := range store.Collections() {
		dim, ok := api.collections[name]
		assert.True(t, ok, "collection %s should exist", name)
		assert.Equal(t, uint64(4), dim)
	}
	assert.Len(t, api.collections, 4)

	// Second call is a no-op.
	require.NoError(t, store.EnsureCollections(context.Background(), 4))
	assert.Len(t, api.collections, 4)
}

func TestEnsureCollectionsDimensionConflict(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	api.collections["image_db_cosine"] = 384

	err := store.EnsureCollections(context.Background(), 512)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestUpsertWritesEveryCollection(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	record := testRecord()
	require.NoError(t, store.Upsert(context.Background(), record))

	for _, name := range store.Collections() {
		assert.True(t, api.has(name, record.ImageID), "record missing from %s", name)
	}
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)

	record := testRecord()
	record.Embedding = []float32{0.1, 0.2}

	err := store.Upsert(context.Background(), record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Empty(t, api.upsertCalls, "no collection should be written")
}

func TestUpsertRetriesTransientFailure(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	// One collection fails once, then recovers.
	api.upsertFailures["image_db_dot"] = 1

	record := testRecord()
	require.NoError(t, store.Upsert(context.Background(), record))

	for _, name := range store.Collections() {
		assert.True(t, api.has(name, record.ImageID), "record missing from %s", name)
	}
}

func TestUpsertRollsBackWhenRetriesExhausted(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	// Fails the initial attempt plus every configured retry.
	api.upsertFailures["image_db_manhattan"] = 1 + store.cfg.UpsertRetries

	record := testRecord()
	err := store.Upsert(context.Background(), record)
	require.Error(t, err)

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, record.ImageID, pw.ImageID)
	assert.Equal(t, OutcomeRetriedAndFailed, pw.Outcome)
	assert.Contains(t, pw.Failed, "image_db_manhattan")

	// No collection may keep a copy the others lack.
	for _, name := range store.Collections() {
		assert.False(t, api.has(name, record.ImageID), "record left behind in %s", name)
	}
}

func TestUpsertRollbackModeSkipsRetries(t *testing.T) {
	api := newFakePointsAPI()
	cfg := DefaultConfig()
	cfg.Dim = 4
	cfg.Reconcile = ReconcileRollback
	store := NewStore(api, cfg, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	api.upsertFailures["image_db_euclid"] = 1

	record := testRecord()
	err := store.Upsert(context.Background(), record)
	require.Error(t, err)

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, OutcomeRolledBack, pw.Outcome)

	// Exactly one attempt per collection, no retries.
	assert.Len(t, api.upsertCalls, 4)
	for _, name := range store.Collections() {
		assert.False(t, api.has(name, record.ImageID))
	}
}

func TestUpsertReportsFailedRollback(t *testing.T) {
	api := newFakePointsAPI()
	cfg := DefaultConfig()
	cfg.Dim = 4
	cfg.Reconcile = ReconcileRollback
	store := NewStore(api, cfg, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	api.upsertFailures["image_db_euclid"] = 1
	api.deleteFailures["image_db_cosine"] = 1

	err := store.Upsert(context.Background(), testRecord())
	require.Error(t, err)

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, OutcomeRollbackFailed, pw.Outcome)
}

func TestDeleteRemovesFromAllCollections(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	record := testRecord()
	require.NoError(t, store.Upsert(context.Background(), record))
	require.NoError(t, store.Delete(context.Background(), record.ImageID))

	for _, name := range store.Collections() {
		assert.False(t, api.has(name, record.ImageID))
	}
	assert.Len(t, api.deleteCalls, 4)
}

func TestDeleteIsIdempotent(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	assert.NoError(t, store.Delete(context.Background(), "never-ingested"))
}

func TestDeleteRetriesTransientFailure(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	record := testRecord()
	require.NoError(t, store.Upsert(context.Background(), record))

	api.deleteFailures["image_db_euclid"] = 1
	require.NoError(t, store.Delete(context.Background(), record.ImageID))

	for _, name := range store.Collections() {
		assert.False(t, api.has(name, record.ImageID))
	}
}

func TestDeleteReportsPartialFailure(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	record := testRecord()
	require.NoError(t, store.Upsert(context.Background(), record))

	// One failure on the first pass plus one per retry keeps the
	// collection split after reconciliation.
	api.deleteFailures["image_db_dot"] = 1 + store.cfg.UpsertRetries

	err := store.Delete(context.Background(), record.ImageID)
	require.Error(t, err)

	pw, ok := IsPartialWrite(err)
	require.True(t, ok)
	assert.Equal(t, record.ImageID, pw.ImageID)
	assert.Equal(t, []string{"image_db_dot"}, pw.Failed)
	assert.Equal(t, OutcomeRetriedAndFailed, pw.Outcome)
	assert.Len(t, pw.Written, 3)

	assert.True(t, api.has("image_db_dot", record.ImageID))
	for _, name := range []string{"image_db_cosine", "image_db_euclid", "image_db_manhattan"} {
		assert.False(t, api.has(name, record.ImageID))
	}
}

func TestStatsReportsPointCounts(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))
	require.NoError(t, store.Upsert(context.Background(), testRecord()))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 4)
	for _, stat := range stats {
		assert.True(t, stat.Exists)
		assert.Equal(t, uint64(1), stat.Points)
	}
}

func scoredPoint(id string, score float32) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Id:    qdrant.NewID(id),
		Score: score,
		Payload: qdrant.NewValueMap(map[string]any{
			"image_id":  id,
			"file_name": "cat.jpg",
			"ai_tags":   []any{"cat"},
		}),
	}
}

func TestSearchFansOutPerMetric(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	api.queryHits["image_db_cosine"] = []*qdrant.ScoredPoint{scoredPoint("img-1", 0.92)}
	api.queryHits["image_db_euclid"] = []*qdrant.ScoredPoint{scoredPoint("img-1", 1.7)}
	api.queryHits["image_db_dot"] = []*qdrant.ScoredPoint{scoredPoint("img-1", 14.2)}
	api.queryHits["image_db_manhattan"] = []*qdrant.ScoredPoint{scoredPoint("img-1", 3.1)}

	resp, err := store.Search(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, model.AllMetrics(), 5)
	require.NoError(t, err)
	require.Len(t, resp.ByMetric, 4)
	assert.Empty(t, resp.Degraded)

	cosine := resp.ByMetric[model.MetricCosine]
	require.Len(t, cosine, 1)
	assert.Equal(t, "img-1", cosine[0].ImageID)
	assert.Equal(t, float32(0.92), cosine[0].Score)
	assert.Equal(t, model.MetricCosine, cosine[0].Metric)
	assert.Equal(t, []string{"cat"}, cosine[0].Record.AITags)
}

func TestSearchDegradesFailedMetrics(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	api.queryHits["image_db_cosine"] = []*qdrant.ScoredPoint{scoredPoint("img-1", 0.9)}
	api.queryFailures["image_db_dot"] = 1

	resp, err := store.Search(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, model.AllMetrics(), 5)
	require.NoError(t, err)
	assert.Contains(t, resp.Degraded, model.MetricDot)
	assert.NotContains(t, resp.Degraded, model.MetricCosine)
	assert.Len(t, resp.ByMetric, 3)
}

func TestSearchFailsWhenAllMetricsFail(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	for _, name := range store.Collections() {
		api.queryFailures[name] = 1
	}

	_, err := store.Search(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, model.AllMetrics(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestSearchUsesConfiguredDefaultLimit(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)
	store.cfg.DefaultLimit = 7
	require.NoError(t, store.EnsureCollections(context.Background(), 4))

	_, err := store.Search(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, nil, 0)
	require.NoError(t, err)

	require.Len(t, api.queryLimits, 4)
	for _, limit := range api.queryLimits {
		assert.Equal(t, uint64(7), limit)
	}
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	api := newFakePointsAPI()
	store := testStore(t, api)

	_, err := store.Search(context.Background(), []float32{0.1}, nil, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCollectionNameMapping(t *testing.T) {
	assert.Equal(t, "image_db_cosine", collectionName("image_db", model.MetricCosine))
	assert.Equal(t, "image_db_euclid", collectionName("image_db", model.MetricEuclid))
	assert.Equal(t, "image_db_dot", collectionName("image_db", model.MetricDot))
	assert.Equal(t, "image_db_manhattan", collectionName("image_db", model.MetricManhattan))

	assert.Equal(t, qdrant.Distance_Cosine, distanceFor(model.MetricCosine))
	assert.Equal(t, qdrant.Distance_Euclid, distanceFor(model.MetricEuclid))
	assert.Equal(t, qdrant.Distance_Dot, distanceFor(model.MetricDot))
	assert.Equal(t, qdrant.Distance_Manhattan, distanceFor(model.MetricManhattan))
}
