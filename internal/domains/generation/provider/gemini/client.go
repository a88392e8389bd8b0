package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"pressline-backend/internal/config"
	"pressline-backend/internal/domains/generation/provider"
)

const ProviderID = "gemini"

// Client generates content through the Google GenAI SDK.
type Client struct {
	cfg    config.GeminiConfig
	client *genai.Client
}

func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	// A missing key is reported lazily from Complete as an auth error so the
	// orchestrator can flag the provider instead of the whole process dying.
	var client *genai.Client
	if cfg.APIKey != "" {
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, err
		}
	}

	return &Client{cfg: cfg, client: client}, nil
}

func (c *Client) ID() string {
	return ProviderID
}

func (c *Client) CostPer1K() decimal.Decimal {
	return c.cfg.CostPer1K
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.client == nil {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindAuth, Detail: "GEMINI_API_KEY is not configured"}
	}

	result, err := c.client.Models.GenerateContent(ctx,
		c.cfg.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(maxTokens),
		},
	)
	if err != nil {
		return "", c.classify(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindEmptyOutput, Detail: "empty candidate returned"}
	}

	return text, nil
}

// classify normalizes GenAI SDK errors into the fallback taxonomy.
func (c *Client) classify(err error) *provider.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{ProviderID: ProviderID, Kind: provider.KindTimeout, Err: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &provider.Error{ProviderID: ProviderID, Kind: provider.KindRateLimited, Err: err}
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &provider.Error{ProviderID: ProviderID, Kind: provider.KindAuth, Err: err}
		case apiErr.Code == http.StatusBadRequest:
			return &provider.Error{ProviderID: ProviderID, Kind: provider.KindBadRequest, Err: err}
		}
	}

	return &provider.Error{ProviderID: ProviderID, Kind: provider.KindServer, Err: err}
}
