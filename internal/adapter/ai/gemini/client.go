// Package gemini implements domain.AIClient with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

// ProviderName labels this provider in logs and metrics.
const ProviderName = "gemini"

const (
	defaultModel = "gemini-2.0-flash"
	temperature  = float32(0.3)
)

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends one GenerateContent call per Chat.
type Client struct {
	models generator
	model  string
}

// New creates a client configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: create genai client: %w", err)
	}
	return newWithGenerator(client.Models, model), nil
}

func newWithGenerator(g generator, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{models: g, model: model}
}

// Provider implements domain.AIClient.
func (c *Client) Provider() string { return ProviderName }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Chat implements domain.AIClient.
func (c *Client) Chat(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	ctx, span := otel.Tracer("ai.gemini").Start(ctx, "gemini.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", c.model), attribute.Int("ai.max_tokens", maxTokens))

	temp := temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxTokens),
	}
	if s := strings.TrimSpace(systemPrompt); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("op=gemini.Chat: %w", classify(err))
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.TrimSpace(part.Text))
		}
		// first candidate only
		break
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("op=gemini.Chat: empty response from %s", ProviderName)
	}
	return b.String(), nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
		case apiErr.Code == http.StatusGatewayTimeout || apiErr.Code == http.StatusRequestTimeout:
			return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
	}
	return err
}
