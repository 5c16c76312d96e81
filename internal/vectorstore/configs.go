package vectorstore

import (
	"os"
	"strconv"
	"time"
)

// ReconcileMode controls how a partial multi-collection write is repaired.
type ReconcileMode string

const (
	// ReconcileRetry retries the missing collections up to UpsertRetries
	// before falling back to rollback. This is the default.
	ReconcileRetry ReconcileMode = "retry"

	// ReconcileRollback skips retrying and deletes the successfully
	// written collections immediately.
	ReconcileRollback ReconcileMode = "rollback"
)

// Config holds connection and behavior settings for the multi-metric store.
type Config struct {
	// Host of the Qdrant server, e.g. "localhost".
	Host string

	// Port is the gRPC port of the Qdrant server. Defaults to 6334.
	Port int

	// ApiKey is the optional authentication token for secured deployments.
	ApiKey string

	// BaseCollection is the prefix shared by the four metric collections:
	// <base>_cosine, <base>_euclid, <base>_dot, <base>_manhattan.
	BaseCollection string

	// Dim is the vector dimension every collection is created with.
	Dim int

	// UpsertRetries bounds per-collection retries after a partial write.
	UpsertRetries int

	// DefaultLimit is the per-metric result count used when a search does
	// not ask for a specific limit.
	DefaultLimit uint64

	// Reconcile selects the partial-write repair strategy.
	Reconcile ReconcileMode

	// Timeout is the maximum duration of a single store request.
	Timeout time.Duration

	// CheckCompatibility toggles client/server version checks.
	CheckCompatibility bool
}

// DefaultConfig provides sensible defaults for a local Qdrant.
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           6334,
		BaseCollection: "image_db",
		Dim:            512,
		UpsertRetries:  2,
		DefaultLimit:   10,
		Reconcile:      ReconcileRetry,
		Timeout:        30 * time.Second,
	}
}

// NewConfig reads store settings from environment variables, falling back to
// DefaultConfig values.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("QDRANT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	cfg.ApiKey = os.Getenv("QDRANT_API_KEY")
	if v := os.Getenv("COLLECTION_NAME"); v != "" {
		cfg.BaseCollection = v
	}
	if v := os.Getenv("EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dim = n
		}
	}
	if v := os.Getenv("DEFAULT_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultLimit = uint64(n)
		}
	}
	if v := os.Getenv("UPSERT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.UpsertRetries = n
		}
	}
	if v := ReconcileMode(os.Getenv("UPSERT_RECONCILE_MODE")); v == ReconcileRollback {
		cfg.Reconcile = ReconcileRollback
	}

	return cfg
}
