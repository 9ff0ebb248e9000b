package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
)

// OllamaClient implements Completer against a local Ollama server.
type OllamaClient struct {
	client *api.Client
	model  string
}

var _ Completer = (*OllamaClient)(nil)

// NewOllamaClient builds a client for cfg.Endpoint (e.g. http://localhost:11434).
func NewOllamaClient(cfg config.LLMConfig) (*OllamaClient, error) {
	base, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint: %w", err)
	}
	return &OllamaClient{
		client: api.NewClient(base, &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}),
		model:  cfg.Model,
	}, nil
}

// Complete runs a non-streaming chat request in JSON mode.
func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": 0.2,
		},
	}

	var out strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama chat: %w", domain.ErrModel, err)
	}
	return out.String(), nil
}
