package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/models"
)

const (
	// worldAttempts is how many times GenerateWorld asks the model.
	worldAttempts = 2
	// scriptHintRunes is the hint length from which the hint itself becomes
	// the world's script.
	scriptHintRunes = 200
)

// Engine is the game's side of the conversation with the model.
type Engine struct {
	client  chat.Client
	logger  *zap.Logger
	metrics *Metrics
}

func NewEngine(client chat.Client, logger *zap.Logger, metrics *Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, logger: logger, metrics: metrics}
}

// Narrate streams the narrator's reply to one player turn and returns it
// whole. Markers are left in.
func (e *Engine) Narrate(ctx context.Context, req NarrateRequest, onChunk func(string)) (string, error) {
	msgs, err := BuildMessages(req)
	if err != nil {
		return "", err
	}
	start := time.Now()
	reply, err := chat.Collect(ctx, e.client, msgs, onChunk)
	e.metrics.chat("narrate", start, err)
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	e.logger.Debug("Narration received",
		zap.Int("messages", len(msgs)),
		zap.Int("reply_bytes", len(reply)),
		zap.Duration("took", time.Since(start)))
	return reply, nil
}

// SummarizeHistory condenses older log entries into a short recap.
func (e *Engine) SummarizeHistory(ctx context.Context, msgs []models.Message) (string, error) {
	prompt, err := buildSummaryPrompt(msgs)
	if err != nil {
		return "", err
	}
	start := time.Now()
	summary, err := e.client.Complete(ctx, []chat.Message{{Role: models.RoleUser, Content: prompt}})
	e.metrics.chat("summarize", start, err)
	if err != nil {
		return "", fmt.Errorf("summarize history: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", chat.ErrEmptyResponse
	}
	return summary, nil
}

// GenerateWorld asks the model for a complete world built around hint. A
// failed attempt is retried once.
func (e *Engine) GenerateWorld(ctx context.Context, hint string) (*models.WorldConfig, error) {
	var lastErr error
	for attempt := 1; attempt <= worldAttempts; attempt++ {
		world, err := e.generateWorld(ctx, hint)
		if err == nil {
			if utf8.RuneCountInString(hint) >= scriptHintRunes {
				world.ScriptContent = hint
			}
			return world, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("World generation attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("generate world: %w", lastErr)
}

func (e *Engine) generateWorld(ctx context.Context, hint string) (*models.WorldConfig, error) {
	start := time.Now()
	raw, err := e.client.Complete(ctx, []chat.Message{
		{Role: models.RoleSystem, Content: generateWorldPrompt},
		{Role: models.RoleUser, Content: hint},
	})
	e.metrics.chat("generate_world", start, err)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, chat.ErrEmptyResponse
	}
	world, err := parseWorld(raw)
	if err != nil {
		return nil, err
	}
	if err := world.Validate(); err != nil {
		return nil, err
	}
	world.Normalize()
	return world, nil
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json|yaml)?\\s*\\n?(.*?)\\n?```")

var errNoWorld = errors.New("no world object in reply")

// extractObject pulls the JSON object out of a model reply: a fenced block
// if there is one, otherwise the text from the first { to the last }.
func extractObject(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func parseWorld(raw string) (*models.WorldConfig, error) {
	obj := extractObject(raw)
	// JSON is read as YAML flow style, which rejects tab indentation. Valid
	// JSON never has a literal tab inside a string.
	obj = strings.ReplaceAll(obj, "\t", "  ")
	var world models.WorldConfig
	if err := yaml.Unmarshal([]byte(obj), &world); err != nil {
		return nil, fmt.Errorf("parse world: %w\nOutput was: %s", err, clip(raw, 500))
	}
	if world.Title == "" && len(world.Characters) == 0 {
		return nil, errNoWorld
	}
	return &world, nil
}
