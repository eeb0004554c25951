// Package openai implements domain.AIClient against an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/jobfit/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

// ProviderName labels this provider in logs and metrics.
const ProviderName = "openai"

// Temperature for scoring replies.
const Temperature = 0.3

const bodySnippetLimit = 512

// Client calls /chat/completions. It makes exactly one HTTP attempt per Chat.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	hc      *http.Client
	tokens  *tokencount.Counter
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New constructs a client. timeout bounds one HTTP exchange.
func New(apiKey, baseURL, model string, timeout time.Duration, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		hc:      &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens:  tokencount.DefaultCounter,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Provider implements domain.AIClient.
func (c *Client) Provider() string { return ProviderName }

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat sends one completion request and returns the first choice's content.
func (c *Client) Chat(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	ctx, span := otel.Tracer("ai.openai").Start(ctx, "openai.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", c.model), attribute.Int("ai.max_tokens", maxTokens))

	if n, err := c.tokens.CountChatTokens(systemPrompt, userPrompt, c.model); err == nil {
		observability.AIPromptTokensTotal.WithLabelValues(ProviderName, c.model).Add(float64(n))
		span.SetAttributes(attribute.Int("ai.prompt_tokens_estimate", n))
	}

	b, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: Temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("op=openai.Chat: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("op=openai.Chat: %w", err)
	}
	r.Header.Set("Authorization", "Bearer "+c.apiKey)
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("op=openai.Chat: %w: %v", domain.ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("op=openai.Chat: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read response body", slog.String("provider", ProviderName), slog.Any("error", err))
		return "", fmt.Errorf("op=openai.Chat: read body: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if err := statusError(resp, bodyBytes); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("op=openai.Chat: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		slog.Error("ai provider decode error", slog.String("provider", ProviderName), slog.String("model", c.model), slog.Any("error", err))
		return "", fmt.Errorf("op=openai.Chat: decode: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("op=openai.Chat: empty choices from %s", ProviderName)
	}
	if out.Model != "" && !strings.HasPrefix(out.Model, c.model) {
		slog.Debug("model substitution detected",
			slog.String("requested_model", c.model),
			slog.String("actual_model", out.Model))
	}
	span.SetAttributes(attribute.Int("ai.completion_tokens", out.Usage.CompletionTokens))
	return out.Choices[0].Message.Content, nil
}

func statusError(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > bodySnippetLimit {
		snippet = snippet[:bodySnippetLimit]
	}
	attrs := []any{
		slog.String("provider", ProviderName),
		slog.Int("status", resp.StatusCode),
		slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
		slog.String("body", snippet),
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("ai provider rate limited", attrs...)
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamRateLimit, resp.StatusCode)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		slog.Warn("ai provider timeout", attrs...)
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamTimeout, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		slog.Warn("ai provider 4xx", attrs...)
		return fmt.Errorf("%w: chat status %d", domain.ErrInvalidArgument, resp.StatusCode)
	default:
		slog.Error("ai provider non-2xx", attrs...)
		return fmt.Errorf("chat status %d", resp.StatusCode)
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
