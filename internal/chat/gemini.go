package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tatianab/narrative-engine/internal/models"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient sends conversations to Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// session prepares a chat session whose history is everything but the last
// turn, and returns the parts of that last turn.
func (c *GeminiClient) session(msgs []Message) (*genai.ChatSession, []genai.Part, error) {
	system, history := geminiContents(msgs)
	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return nil, nil, fmt.Errorf("gemini: conversation must end with a user turn")
	}
	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	cs := model.StartChat()
	last := history[len(history)-1]
	cs.History = history[:len(history)-1]
	return cs, last.Parts, nil
}

func (c *GeminiClient) Complete(ctx context.Context, msgs []Message) (string, error) {
	cs, parts, err := c.session(msgs)
	if err != nil {
		return "", err
	}
	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *GeminiClient) Stream(ctx context.Context, msgs []Message, onChunk func(string)) error {
	cs, parts, err := c.session(msgs)
	if err != nil {
		return err
	}
	iter := cs.SendMessageStream(ctx, parts...)
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if text := responseText(resp); text != "" {
			onChunk(text)
		}
	}
}

// geminiContents folds leading system messages into the system instruction
// and maps the rest onto Gemini's user/model roles. System messages in the
// middle of the log are sent as user notes. Consecutive turns of the same
// role are merged.
func geminiContents(msgs []Message) (string, []*genai.Content) {
	var system []string
	var out []*genai.Content
	for _, m := range msgs {
		role, text := "user", m.Content
		switch m.Role {
		case models.RoleSystem:
			if len(out) == 0 {
				system = append(system, m.Content)
				continue
			}
			text = "[系统] " + m.Content
		case models.RoleAssistant:
			role = "model"
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, genai.Text(text))
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return strings.Join(system, "\n\n"), out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
