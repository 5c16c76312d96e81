package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Analysis is the structured result of captioning one image.
type Analysis struct {
	Description string
	Tags        []string
	Model       string
}

// Client generates tags and descriptions for images through an
// OpenAI-compatible multimodal chat endpoint.
type Client struct {
	api     *openai.Client
	model   string
	maxTags int
}

// NewClient constructs a captioning client from Config.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		maxTags: cfg.MaxTags,
	}, nil
}

// Model returns the configured caption model identifier.
func (c *Client) Model() string {
	return c.model
}

// Analyze produces tags and a free-text description for the image.
//
// Two requests are sent, one per concern, because the tag call needs a low
// temperature for stable vocabulary while the description call benefits from
// a higher one. A transport failure on either call aborts with
// ErrServiceUnavailable; a response that cannot be decomposed yields ErrParse.
func (c *Client) Analyze(ctx context.Context, imageBytes []byte) (Analysis, error) {
	tags, err := c.generateTags(ctx, imageBytes)
	if err != nil {
		return Analysis{}, err
	}

	description, err := c.generateDescription(ctx, imageBytes)
	if err != nil {
		return Analysis{}, err
	}

	return Analysis{
		Description: description,
		Tags:        tags,
		Model:       c.model,
	}, nil
}

func (c *Client) generateTags(ctx context.Context, imageBytes []byte) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze the provided image and generate descriptive tags. "+
			"Produce exactly %d tags describing the image content. "+
			"Format the answer as a JSON array of strings. "+
			`Example: ["beach", "sunset", "ocean", "sky", "sand", "waves", "tropical", "landscape", "nature", "outdoors"]`,
		c.maxTags,
	)

	content, err := c.complete(ctx, prompt, imageBytes, 500, 0.3)
	if err != nil {
		return nil, err
	}

	tags, err := parseTags(content, c.maxTags)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) generateDescription(ctx context.Context, imageBytes []byte) (string, error) {
	prompt := "Analyze the provided image and give a detailed description. " +
		"Describe the main subjects, the surroundings, colors, mood and any notable features. " +
		"Write one coherent paragraph of 3-5 sentences."

	content, err := c.complete(ctx, prompt, imageBytes, 300, 0.7)
	if err != nil {
		return "", err
	}

	description := strings.TrimSpace(content)
	if description == "" {
		return "", fmt.Errorf("%w: empty description", ErrParse)
	}
	return description, nil
}

// complete sends one vision chat-completion request with the image attached
// as a base64 data URL content part.
func (c *Client) complete(ctx context.Context, prompt string, imageBytes []byte, maxTokens int, temperature float32) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(imageBytes)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrParse)
	}

	return resp.Choices[0].Message.Content, nil
}
