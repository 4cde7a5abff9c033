package llm

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

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Config holds the endpoint and model settings for an OpenAI-compatible chat API.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	Retry       RetryConfig
}

// RetryConfig holds retry configuration for completion requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first one.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns sensible retry defaults for completion requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
)

// Client sends single-turn chat completions.
type Client struct {
	cfg        Config
	url        string
	httpClient *http.Client
}

// NewClient creates a chat completion client, filling unset config with defaults.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Client{
		cfg:        cfg,
		url:        BuildURL(cfg.BaseURL),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// BuildURL constructs the chat completions endpoint.
func BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}

	return baseURL + "/chat/completions"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Summarize sends prompt as a single user message and returns the first choice's
// content. Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	body, err := c.buildRequestBody(prompt)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var content string
	attempt := 0
	operation := func() error {
		attempt++
		text, err := c.complete(ctx, body)
		if err != nil {
			if IsFatal(err) {
				return backoff.Permanent(err)
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("Chat completion failed, retrying")
			return err
		}
		content = text
		return nil
	}

	if err := backoff.Retry(operation, c.retryPolicy(ctx)); err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.cfg.Retry.BackoffBase > 0 {
		b.InitialInterval = c.cfg.Retry.BackoffBase
	}
	if c.cfg.Retry.BackoffMultiplier > 0 {
		b.Multiplier = c.cfg.Retry.BackoffMultiplier
	}
	if c.cfg.Retry.MaxBackoff > 0 {
		b.MaxInterval = c.cfg.Retry.MaxBackoff
	}
	retries := uint64(0)
	if c.cfg.Retry.MaxAttempts > 1 {
		retries = uint64(c.cfg.Retry.MaxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

func (c *Client) buildRequestBody(prompt string) ([]byte, error) {
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	}
	if c.cfg.MaxTokens > 0 {
		req.MaxTokens = &c.cfg.MaxTokens
	}
	return json.Marshal(req)
}

func (c *Client) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", NewFatalError(err)
		}
		return "", NewTransientError(fmt.Errorf("execute request to %s: %w", c.url, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", NewTransientError(apiErr)
		}
		return "", NewFatalError(apiErr)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", NewFatalError(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", NewFatalError(errors.New("no choices in response"))
	}

	log.Debug().
		Str("model", parsed.Model).
		Int("tokens", parsed.Usage.TotalTokens).
		Str("finish_reason", parsed.Choices[0].FinishReason).
		Msg("Chat completion received")

	return parsed.Choices[0].Message.Content, nil
}
