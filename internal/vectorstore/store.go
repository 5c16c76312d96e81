package vectorstore

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"picsema/internal/logger"
	"picsema/internal/model"
)

// Store writes every image record redundantly into one collection per
// distance metric and serves per-metric similarity queries against them.
type Store struct {
	api    pointsAPI
	cfg    *Config
	logger *logger.Logger
}

// CollectionStat reports basic counters for a single metric collection.
type CollectionStat struct {
	Metric     model.Metric
	Collection string
	Points     uint64
	Exists     bool
}

func NewStore(api pointsAPI, cfg *Config, log *logger.Logger) *Store {
	return &Store{api: api, cfg: cfg, logger: log}
}

// Collections returns the four collection names in metric order.
func (s *Store) Collections() []string {
	names := make([]string, 0, len(model.AllMetrics()))
	for _, m := range model.AllMetrics() {
		names = append(names, collectionName(s.cfg.BaseCollection, m))
	}
	return names
}

// EnsureCollections creates any missing metric collections with the given
// vector dimension. Existing collections are verified instead of recreated;
// a dimension conflict on an existing collection returns
// ErrDimensionMismatch rather than silently reusing it.
func (s *Store) EnsureCollections(ctx context.Context, dim uint64) error {
	for _, m := range model.AllMetrics() {
		name := collectionName(s.cfg.BaseCollection, m)

		exists, err := s.api.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("vectorstore: failed to check collection %s: %w", name, err)
		}

		if exists {
			existing, err := s.collectionDim(ctx, name)
			if err != nil {
				return err
			}
			if existing != 0 && existing != dim {
				return fmt.Errorf("vectorstore: collection %s has dimension %d, want %d: %w",
					name, existing, dim, ErrDimensionMismatch)
			}
			continue
		}

		err = s.api.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: distanceFor(m),
			}),
		})
		if err != nil {
			return fmt.Errorf("vectorstore: failed to create collection %s: %w", name, err)
		}

		s.logger.Info("created collection", nil, map[string]interface{}{
			"collection": name,
			"metric":     string(m),
			"dim":        dim,
		})
	}
	return nil
}

func (s *Store) collectionDim(ctx context.Context, name string) (uint64, error) {
	info, err := s.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("vectorstore: failed to inspect collection %s: %w", name, err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, nil
	}
	return params.GetSize(), nil
}

// Upsert writes the record into all metric collections. The write is only
// considered successful when every collection accepted it; on a partial
// failure the store reconciles according to its configured mode and reports
// the final state through a PartialWriteError.
func (s *Store) Upsert(ctx context.Context, record *model.ImageRecord) error {
	if len(record.Embedding) != s.cfg.Dim {
		return fmt.Errorf("vectorstore: embedding has %d dimensions, want %d: %w",
			len(record.Embedding), s.cfg.Dim, ErrDimensionMismatch)
	}

	payload := qdrant.NewValueMap(record.Payload())
	written := make([]string, 0, len(model.AllMetrics()))
	failed := make([]string, 0)
	var firstErr error

	for _, m := range model.AllMetrics() {
		name := collectionName(s.cfg.BaseCollection, m)
		if err := s.upsertOne(ctx, name, record, payload); err != nil {
			failed = append(failed, name)
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("collection write failed", err, map[string]interface{}{
				"collection": name,
				"image_id":   record.ImageID,
			})
			continue
		}
		written = append(written, name)
	}

	if len(failed) == 0 {
		return nil
	}
	return s.reconcile(ctx, record, payload, written, failed, firstErr)
}

func (s *Store) upsertOne(ctx context.Context, collection string, record *model.ImageRecord, payload map[string]*qdrant.Value) error {
	wait := true
	_, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(record.ImageID),
			Vectors: qdrant.NewVectors(record.Embedding...),
			Payload: payload,
		}},
		Wait: &wait,
	})
	return err
}

// reconcile attempts to repair a partially written record. In retry mode the
// failed collections are retried up to UpsertRetries times; if any still
// fail, or in rollback mode, the successfully written copies are removed so
// no collection is left holding a record the others lack.
func (s *Store) reconcile(ctx context.Context, record *model.ImageRecord, payload map[string]*qdrant.Value, written, failed []string, cause error) error {
	if s.cfg.Reconcile == ReconcileRetry {
		for attempt := 1; attempt <= s.cfg.UpsertRetries && len(failed) > 0; attempt++ {
			remaining := failed
			failed = make([]string, 0, len(remaining))
			for _, name := range remaining {
				if err := s.upsertOne(ctx, name, record, payload); err != nil {
					failed = append(failed, name)
					cause = err
					continue
				}
				written = append(written, name)
			}
		}
		if len(failed) == 0 {
			s.logger.Info("partial write repaired by retry", nil, map[string]interface{}{
				"image_id": record.ImageID,
			})
			return nil
		}
	}

	outcome := OutcomeRolledBack
	if err := s.rollback(ctx, record.ImageID, written); err != nil {
		outcome = OutcomeRollbackFailed
		s.logger.Error("rollback of partial write failed", err, map[string]interface{}{
			"image_id": record.ImageID,
		})
	}
	if s.cfg.Reconcile == ReconcileRetry && outcome == OutcomeRolledBack {
		outcome = OutcomeRetriedAndFailed
	}

	return &PartialWriteError{
		ImageID: record.ImageID,
		Written: written,
		Failed:  failed,
		Outcome: outcome,
		Err:     cause,
	}
}

func (s *Store) rollback(ctx context.Context, imageID string, written []string) error {
	var firstErr error
	for _, name := range written {
		if err := s.deleteFrom(ctx, name, imageID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Delete removes the record from all metric collections, matching on the
// image_id payload field. Missing records are not an error; deletion is
// idempotent. Like Upsert, the call either reaches every collection or
// reports the split through a PartialWriteError, with failed collections
// retried up to UpsertRetries first. Deletes cannot be rolled back, so a
// persistent split always surfaces as OutcomeRetriedAndFailed.
func (s *Store) Delete(ctx context.Context, imageID string) error {
	deleted := make([]string, 0, len(model.AllMetrics()))
	failed := make([]string, 0)
	var cause error

	for _, m := range model.AllMetrics() {
		name := collectionName(s.cfg.BaseCollection, m)
		if err := s.deleteFrom(ctx, name, imageID); err != nil {
			failed = append(failed, name)
			if cause == nil {
				cause = err
			}
			s.logger.Warn("collection delete failed", err, map[string]interface{}{
				"collection": name,
				"image_id":   imageID,
			})
			continue
		}
		deleted = append(deleted, name)
	}
	if len(failed) == 0 {
		return nil
	}

	for attempt := 1; attempt <= s.cfg.UpsertRetries && len(failed) > 0; attempt++ {
		remaining := failed
		failed = make([]string, 0, len(remaining))
		for _, name := range remaining {
			if err := s.deleteFrom(ctx, name, imageID); err != nil {
				failed = append(failed, name)
				cause = err
				continue
			}
			deleted = append(deleted, name)
		}
	}
	if len(failed) == 0 {
		s.logger.Info("partial delete repaired by retry", nil, map[string]interface{}{
			"image_id": imageID,
		})
		return nil
	}

	return &PartialWriteError{
		ImageID: imageID,
		Written: deleted,
		Failed:  failed,
		Outcome: OutcomeRetriedAndFailed,
		Err:     cause,
	}
}

func (s *Store) deleteFrom(ctx context.Context, collection, imageID string) error {
	wait := true
	_, err := s.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("image_id", imageID),
					},
				},
			},
		},
		Wait: &wait,
	})
	return err
}

// Stats reports the point count of every metric collection.
func (s *Store) Stats(ctx context.Context) ([]CollectionStat, error) {
	stats := make([]CollectionStat, 0, len(model.AllMetrics()))
	for _, m := range model.AllMetrics() {
		name := collectionName(s.cfg.BaseCollection, m)
		stat := CollectionStat{Metric: m, Collection: name}

		exists, err := s.api.CollectionExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: failed to check collection %s: %w", name, err)
		}
		stat.Exists = exists

		if exists {
			info, err := s.api.GetCollectionInfo(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("vectorstore: failed to inspect collection %s: %w", name, err)
			}
			stat.Points = info.GetPointsCount()
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
