// Package chat is the transport to the generative model. Every provider
// offers one-shot completion and streaming with the same message shape.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tatianab/narrative-engine/internal/models"
)

// ErrEmptyResponse is returned by Complete when the model produced no text.
var ErrEmptyResponse = errors.New("chat: empty response")

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    models.Role
	Content string
}

// Client talks to a model. Stream calls onChunk with each text fragment in
// order and returns once the reply is complete.
type Client interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
	Stream(ctx context.Context, msgs []Message, onChunk func(string)) error
}

// Collect streams a reply and returns it as one string, forwarding each
// fragment to onChunk (which may be nil) along the way.
func Collect(ctx context.Context, c Client, msgs []Message, onChunk func(string)) (string, error) {
	var b strings.Builder
	err := c.Stream(ctx, msgs, func(chunk string) {
		b.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider      string
	Model         string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaURL     string
	Timeout       time.Duration
}

// New builds the client for s.Provider.
func New(ctx context.Context, s Settings) (Client, error) {
	switch s.Provider {
	case ProviderGemini, "":
		c, err := NewGeminiClient(ctx, s.GeminiAPIKey, s.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		return NewOpenAIClient(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Model), nil
	case ProviderOllama:
		c, err := NewOllamaClient(s.OllamaURL, s.Model, s.Timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown chat provider %q", s.Provider)
}
