// Package geocode resolves GPS coordinates to human-readable place names via
// the Nominatim reverse-geocoding API. Lookup failures are reported to the
// caller, which treats them as absence of a location, never as an ingestion
// failure.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries a Nominatim-compatible endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Config holds geocoder settings.
type Config struct {
	// BaseURL of the Nominatim service. Empty disables geocoding.
	BaseURL string

	// UserAgent sent with every request; Nominatim's usage policy requires
	// an identifying agent.
	UserAgent string

	// Timeout for a single lookup.
	Timeout time.Duration
}

// DefaultConfig points at the public Nominatim instance.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://nominatim.openstreetmap.org",
		UserAgent: "picsema/1.0",
		Timeout:   10 * time.Second,
	}
}

// NewClient constructs a geocoding client.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "picsema/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ReverseLookup resolves coordinates to a lowercased display name.
func (c *Client) ReverseLookup(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("accept-language", "en")

	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("geocode: http %d for %s", resp.StatusCode, endpoint)
	}

	var parsed struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("geocode: decode response: %w", err)
	}

	if parsed.DisplayName == "" {
		return "", fmt.Errorf("geocode: no result for %f,%f", lat, lon)
	}

	return strings.ToLower(strings.TrimSpace(parsed.DisplayName)), nil
}
