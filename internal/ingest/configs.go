package ingest

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the ingestion pipeline.
type Config struct {
	// AllowedRoots are the only directories images may be ingested from.
	// Requests resolving outside every root are rejected without touching
	// the filesystem.
	AllowedRoots []string

	// Workers bounds the number of images processed concurrently during
	// directory ingestion.
	Workers int

	// MaxImages caps how many images a single directory ingestion picks
	// up. Zero means no cap.
	MaxImages int

	// RetryAttempts is how often a transient captioning or embedding
	// failure is retried before the image is failed.
	RetryAttempts int

	// RetryBackoff is the pause before the first retry attempt. The pause
	// doubles after every attempt.
	RetryBackoff time.Duration
}

// DefaultConfig returns the pipeline defaults without any allowed roots.
func DefaultConfig() *Config {
	return &Config{
		Workers:       4,
		RetryAttempts: 2,
		RetryBackoff:  500 * time.Millisecond,
	}
}

// NewConfig reads the pipeline configuration from the environment. The
// allow-list comes from ALLOWED_DIRECTORIES as a comma-separated list.
func NewConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ALLOWED_DIRECTORIES"); v != "" {
		for _, root := range strings.Split(v, ",") {
			if root = strings.TrimSpace(root); root != "" {
				cfg.AllowedRoots = append(cfg.AllowedRoots, root)
			}
		}
	}
	if v := os.Getenv("INGEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("INGEST_MAX_IMAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxImages = n
		}
	}
	if v := os.Getenv("INGEST_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RetryAttempts = n
		}
	}
	if v := os.Getenv("INGEST_RETRY_BACKOFF_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RetryBackoff = time.Duration(n) * time.Millisecond
		}
	}
	return cfg
}

// Validate checks that the configuration can serve ingestion requests.
func (c *Config) Validate() error {
	if len(c.AllowedRoots) == 0 {
		return fmt.Errorf("ingest: no allowed directories configured")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("ingest: workers must be positive")
	}
	return nil
}
