package vectorstore

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"picsema/internal/logger"
)

// pointsAPI is the slice of the Qdrant SDK the store depends on. Narrowing
// the dependency keeps the reconciliation logic unit-testable without a
// running server.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// NewQdrantClient constructs the underlying Qdrant SDK client and validates
// connectivity with an immediate health check, failing fast if the service
// is unreachable.
func NewQdrantClient(cfg *Config, log *logger.Logger) (*qdrant.Client, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   port,
		APIKey:                 cfg.ApiKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: failed to initialize client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := client.HealthCheck(ctx)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: health check failed: %w", err)
	}

	log.Info("connected to qdrant", nil, map[string]interface{}{
		"host":    cfg.Host,
		"port":    port,
		"version": resp.GetVersion(),
	})

	return client, nil
}
