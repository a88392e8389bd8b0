package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pressline-backend/internal/config"
	"pressline-backend/internal/domains/generation/provider"
)

const ProviderID = "openai"

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Per-attempt deadlines come from the caller's context; this is
			// only a hard upper bound against leaked requests.
			Timeout: cfg.Timeout + 30*time.Second,
		},
	}
}

func (c *Client) ID() string {
	return ProviderID
}

func (c *Client) CostPer1K() decimal.Decimal {
	return c.cfg.CostPer1K
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindAuth, Detail: "OPENAI_API_KEY is not configured"}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindBadRequest, Err: err}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindTimeout, Err: err}
		}
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindServer, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindServer, Err: err}
	}

	if kind, ok := classifyStatus(resp.StatusCode); ok {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var parsed chatResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			detail = parsed.Error.Message
		}
		return "", &provider.Error{ProviderID: ProviderID, Kind: kind, Detail: detail}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindServer, Err: err}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &provider.Error{ProviderID: ProviderID, Kind: provider.KindEmptyOutput, Detail: "no completion choices returned"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus maps HTTP status codes to the fallback taxonomy. Returns
// ok=false for 2xx.
func classifyStatus(status int) (provider.ErrorKind, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", false
	case status == http.StatusTooManyRequests:
		return provider.KindRateLimited, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return provider.KindAuth, true
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return provider.KindBadRequest, true
	default:
		return provider.KindServer, true
	}
}
