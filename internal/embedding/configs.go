package embedding

import (
	"fmt"
	"os"
	"strconv"
)

// EMBEDDING_ENDPOINT must point to the root of the CLIP sidecar service (no
// /embed path appended). The client appends paths itself, so callers only
// supply the host base URL.

// Config holds settings for the embedding service client.
type Config struct {
	// Endpoint is the base URL of the CLIP inference sidecar.
	Endpoint string

	// Dim is the vector dimension the service is expected to return.
	// CLIP-ViT-B-32 produces 512-dimensional embeddings.
	Dim int

	// HTTPTimeoutS is the HTTP timeout in seconds (default 30).
	HTTPTimeoutS int
}

// NewConfig reads embedding settings from environment variables.
func NewConfig() *Config {
	timeout := 30
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	dim := 512
	if v := os.Getenv("EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dim = n
		}
	}

	return &Config{
		Endpoint:     os.Getenv("EMBEDDING_ENDPOINT"),
		Dim:          dim,
		HTTPTimeoutS: timeout,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_ENDPOINT")
	}
	if c.Dim <= 0 {
		return fmt.Errorf("embedding: EMBEDDING_DIM must be positive")
	}
	return nil
}
