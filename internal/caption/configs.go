package caption

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds settings for the captioning endpoint.
//
// The client speaks the OpenAI chat-completions protocol, which Ollama
// exposes at /v1/; any OpenAI-compatible multimodal endpoint works.
type Config struct {
	// BaseURL of the OpenAI-compatible API, e.g. "http://localhost:11434/v1/".
	BaseURL string

	// APIKey for the endpoint. Ollama accepts any non-empty value.
	APIKey string

	// Model is the multimodal model identifier used for tagging and
	// description, recorded in every ImageRecord for provenance.
	Model string

	// MaxTags caps the number of tags requested and kept per image.
	MaxTags int
}

// NewConfig reads captioning settings from environment variables.
func NewConfig() *Config {
	maxTags := 10
	if v := os.Getenv("CAPTION_MAX_TAGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxTags = n
		}
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1/"
	}

	apiKey := os.Getenv("OLLAMA_API_KEY")
	if apiKey == "" {
		apiKey = "ollama"
	}

	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "mistral-small3.2:latest"
	}

	return &Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		MaxTags: maxTags,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("caption: missing OLLAMA_BASE_URL")
	}
	if c.Model == "" {
		return fmt.Errorf("caption: missing OLLAMA_MODEL")
	}
	return nil
}
