// Package embedding computes CLIP embeddings for images and text through an
// inference sidecar. Images and text map into the same vector space, so a
// text query can be ranked against image-derived vectors.
package embedding

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is the public entrypoint for computing embeddings. It hides
// endpoint paths, encoding, and transport details from the application layer.
type Client struct {
	baseURL    string
	dim        int
	httpClient *http.Client
}

// NewClient constructs a Client from Config.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		dim:        cfg.Dim,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
	}, nil
}

// Dim returns the configured vector dimension.
func (c *Client) Dim() int {
	return c.dim
}

// EmbedImage computes the embedding for raw image bytes.
func (c *Client) EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("embedding: no image bytes provided")
	}

	body := map[string]any{
		"image": base64.StdEncoding.EncodeToString(imageBytes),
	}
	return c.embed(ctx, c.baseURL+"/embed/image", body)
}

// EmbedText computes the embedding for a text string in the same space as
// image embeddings.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding: no text provided")
	}

	body := map[string]any{
		"text": text,
	}
	return c.embed(ctx, c.baseURL+"/embed/text", body)
}

func (c *Client) embed(ctx context.Context, url string, body map[string]any) ([]float32, error) {
	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}

	if err := c.postJSON(ctx, url, body, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrServiceUnavailable)
	}
	if len(parsed.Embedding) != c.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(parsed.Embedding), c.dim)
	}

	return parsed.Embedding, nil
}
