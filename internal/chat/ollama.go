package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "qwen2.5"
)

// OllamaClient talks to a local Ollama server through its native chat API.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	// api.NewClient wants the server root, not the OpenAI-compatible /v1 path.
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", baseURL, err)
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaClient{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

func (c *OllamaClient) request(msgs []Message, stream bool) *api.ChatRequest {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return &api.ChatRequest{Model: c.model, Messages: out, Stream: &stream}
}

func (c *OllamaClient) Complete(ctx context.Context, msgs []Message) (string, error) {
	var text string
	err := c.client.Chat(ctx, c.request(msgs, false), func(r api.ChatResponse) error {
		text += r.Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *OllamaClient) Stream(ctx context.Context, msgs []Message, onChunk func(string)) error {
	return c.client.Chat(ctx, c.request(msgs, true), func(r api.ChatResponse) error {
		if r.Message.Content != "" {
			onChunk(r.Message.Content)
		}
		return nil
	})
}
