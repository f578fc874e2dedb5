package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/narrative-engine/internal/markers"
	"github.com/tatianab/narrative-engine/internal/models"
	"github.com/tatianab/narrative-engine/internal/narrative"
	"github.com/tatianab/narrative-engine/internal/storage"
)

var (
	ErrTurnInFlight = errors.New("a turn is already in progress")
	ErrNotStarted   = errors.New("game has not started")
	ErrEmptyInput   = errors.New("empty input")
)

// DefaultSaveKey is the store key the session is saved under.
const DefaultSaveKey = "narrative-save-v1"

const (
	// summarizeAfter is the log length past which older messages are
	// summarized, once per session.
	summarizeAfter = 15
	// keepAfterSummary is how many messages are sent verbatim next to a summary.
	keepAfterSummary = 10
	// keepWithoutSummary is how many messages are sent when there is no summary.
	keepWithoutSummary = 20
)

// Phase is where the current turn is in its life cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseCompleted
	PhaseParsed
	PhaseApplied
	PhaseFallback
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStreaming:
		return "streaming"
	case PhaseCompleted:
		return "completed"
	case PhaseParsed:
		return "parsed"
	case PhaseApplied:
		return "applied"
	case PhaseFallback:
		return "fallback"
	}
	return "unknown"
}

// Outcome is how a turn ended.
type Outcome int

const (
	// OutcomeApplied means the reply was parsed and its markers applied.
	OutcomeApplied Outcome = iota
	// OutcomeEmpty means the model said nothing and a stock line stood in.
	OutcomeEmpty
	// OutcomeFallback means the turn failed and a stock line was recorded.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFallback:
		return "fallback"
	}
	return "unknown"
}

// TurnResult describes a finished turn.
type TurnResult struct {
	Outcome Outcome
	Reply   string // as recorded in the log, markers included
	Batch   markers.Batch
	Reason  string // why the turn fell back
}

// Game owns the state of one play session. Turns run one at a time; every
// other mutation is refused while a turn is in flight.
type Game struct {
	engine  *Engine
	store   storage.Store
	saveKey string
	logger  *zap.Logger
	metrics *Metrics
	ids     IDSource
	now     func() time.Time

	busy atomic.Bool

	mu        sync.RWMutex
	state     *models.GameState
	world     *models.WorldConfig
	override  *models.WorldConfig // the active world unless it is the built-in one
	phase     Phase
	streaming strings.Builder
}

// Option configures a Game.
type Option func(*Game)

func WithSaveKey(key string) Option {
	return func(g *Game) { g.saveKey = key }
}

func WithIDSource(ids IDSource) Option {
	return func(g *Game) { g.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// NewGame creates a session that narrates through e and saves to store. A
// nil store keeps saves in memory.
func NewGame(e *Engine, store storage.Store, opts ...Option) *Game {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	g := &Game{
		engine:  e,
		store:   store,
		saveKey: DefaultSaveKey,
		logger:  e.logger,
		metrics: e.metrics,
		ids:     UUIDSource{},
		now:     time.Now,
		world:   models.DefaultWorld(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init starts a new game in world, or in the built-in world when world is
// nil.
func (g *Game) Init(world *models.WorldConfig) error {
	var override *models.WorldConfig
	if world == nil {
		world = models.DefaultWorld()
	} else {
		if err := world.Validate(); err != nil {
			return err
		}
		override = world
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy.Load() {
		return ErrTurnInFlight
	}
	g.world, g.override = world, override
	g.state = models.NewGameState(world)
	g.phase = PhaseIdle
	g.streaming.Reset()
	g.logger.Info("Game started", zap.String("world", world.Title), zap.Bool("custom", override != nil))
	return nil
}

// NewWorld generates a world from a one-line idea and starts a game in it.
func (g *Game) NewWorld(ctx context.Context, hint string) error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	world, err := g.engine.GenerateWorld(ctx, hint)
	g.busy.Store(false)
	if err != nil {
		return err
	}
	return g.Init(world)
}

// State returns a copy of the current state, nil before Init.
func (g *Game) State() *models.GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.Clone()
}

// World returns the active world. Callers must not modify it.
func (g *Game) World() *models.WorldConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.world
}

func (g *Game) Phase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// IsTyping reports whether a model call is in flight.
func (g *Game) IsTyping() bool {
	return g.busy.Load()
}

// Streaming returns the reply received so far for the turn in flight.
func (g *Game) Streaming() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.streaming.String()
}

// Palette returns the speaker colors of the active world.
func (g *Game) Palette() narrative.Palette {
	return narrative.PaletteFor(g.World())
}

func (g *Game) setPhase(p Phase) {
	g.mu.Lock()
	g.phase = p
	g.mu.Unlock()
	g.logger.Debug("Turn phase", zap.Stringer("phase", p))
}

// Send plays one turn: the player's text goes to the narrator, the reply is
// streamed to onChunk, and once complete its markers are applied and the
// game is saved. Model failures never surface as errors; they produce a
// fallback turn instead.
func (g *Game) Send(ctx context.Context, text string, onChunk func(string)) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyInput
	}
	if !g.busy.CompareAndSwap(false, true) {
		return TurnResult{}, ErrTurnInFlight
	}
	defer g.busy.Store(false)

	g.mu.Lock()
	if g.state == nil || !g.state.Started {
		g.mu.Unlock()
		return TurnResult{}, ErrNotStarted
	}
	base, world := g.state, g.world
	g.streaming.Reset()
	g.mu.Unlock()

	character := ""
	if c, ok := world.Character(base.Character); ok {
		character = c.Name
	}
	turn := Turn{UserText: text, Character: base.Character, At: g.now()}

	base, recent := g.compress(ctx, base)

	g.setPhase(PhaseStreaming)
	promptState := base.Clone()
	promptState.Round++
	var reply string
	err := recovered("narrate", func() (err error) {
		reply, err = g.engine.Narrate(ctx, NarrateRequest{
			State:    promptState,
			World:    world,
			Summary:  base.HistorySummary,
			Recent:   recent,
			UserText: text,
		}, func(chunk string) {
			g.mu.Lock()
			g.streaming.WriteString(chunk)
			g.mu.Unlock()
			if onChunk != nil {
				onChunk(chunk)
			}
		})
		return err
	})
	if err != nil {
		return g.fallback(base, turn, character, err), nil
	}
	g.setPhase(PhaseCompleted)

	outcome := OutcomeApplied
	if strings.TrimSpace(reply) == "" {
		outcome = OutcomeEmpty
		reply = emptyReply(character)
		g.logger.Warn("Empty reply from model, using stock line")
	}
	turn.Reply = reply

	next, batch, err := g.apply(base, world, turn)
	if err != nil {
		return g.fallback(base, turn, character, err), nil
	}

	g.commit(next, PhaseApplied)
	g.metrics.turn(outcome)
	g.metrics.extracted(batch)
	g.logger.Info("Turn applied",
		zap.Int("round", next.Round),
		zap.Stringer("outcome", outcome),
		zap.Int("markers", len(batch.Markers())))

	if err := g.Save(context.WithoutCancel(ctx)); err != nil {
		g.logger.Error("Failed to save game", zap.Error(err))
	}
	return TurnResult{Outcome: outcome, Reply: reply, Batch: batch}, nil
}

// compress summarizes the older part of the log the first time it grows
// past summarizeAfter and returns the messages to send verbatim.
func (g *Game) compress(ctx context.Context, s *models.GameState) (*models.GameState, []models.Message) {
	if len(s.Messages) <= summarizeAfter || s.HistorySummary != "" {
		return s, tail(s.Messages, keepWithoutSummary)
	}
	old := s.Messages[:len(s.Messages)-keepAfterSummary]
	var summary string
	err := recovered("summarize", func() (err error) {
		summary, err = g.engine.SummarizeHistory(ctx, old)
		return err
	})
	if err != nil {
		g.logger.Warn("History summary failed, sending recent messages instead", zap.Error(err))
		return s, tail(s.Messages, keepWithoutSummary)
	}
	g.logger.Info("History summarized", zap.Int("messages", len(old)))
	return SetHistorySummary(s, summary), tail(s.Messages, keepAfterSummary)
}

func tail(msgs []models.Message, n int) []models.Message {
	if len(msgs) > n {
		return msgs[len(msgs)-n:]
	}
	return msgs
}

// apply extracts and reduces.
func (g *Game) apply(base *models.GameState, world *models.WorldConfig, t Turn) (next *models.GameState, batch markers.Batch, err error) {
	err = recovered("apply turn", func() error {
		batch = markers.Extract(t.Reply, markers.VocabularyFor(world))
		g.setPhase(PhaseParsed)
		t.Batch = batch
		next = Reduce(base, world, t, g.ids)
		return nil
	})
	return next, batch, err
}

// recovered runs fn, turning a panic into an error so a broken provider or
// reply fails the turn instead of the session.
func recovered(what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", what, r)
		}
	}()
	return fn()
}

func (g *Game) fallback(base *models.GameState, t Turn, character string, cause error) TurnResult {
	g.setPhase(PhaseFallback)
	g.logger.Warn("Turn failed, recording fallback", zap.Error(cause))
	t.Reply = failedReply(character)
	g.commit(ApplyFallback(base, t, g.ids), PhaseApplied)
	g.metrics.turn(OutcomeFallback)
	return TurnResult{Outcome: OutcomeFallback, Reply: t.Reply, Reason: cause.Error()}
}

// commit installs the next generation and returns to idle.
func (g *Game) commit(next *models.GameState, p Phase) {
	g.mu.Lock()
	g.state = next
	g.phase = PhaseIdle
	g.streaming.Reset()
	g.mu.Unlock()
	g.logger.Debug("Turn phase", zap.Stringer("phase", p))
}

func emptyReply(character string) string {
	if character != "" {
		return "【" + character + "】（看了你一眼）\"你说什么？\""
	}
	return "四周一片寂静，只有远处传来若有若无的风声。"
}

func failedReply(character string) string {
	if character != "" {
		return "【" + character + "】（似乎在思考什么）\"抱歉，我刚才走神了。你说什么？\""
	}
	return "一阵奇怪的风吹过，似乎什么也没有发生。"
}

// update applies a transition to a started game unless a turn is in flight.
func (g *Game) update(fn func(s *models.GameState, w *models.WorldConfig) (*models.GameState, error)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy.Load() {
		return ErrTurnInFlight
	}
	if g.state == nil || !g.state.Started {
		return ErrNotStarted
	}
	next, err := fn(g.state, g.world)
	if err != nil {
		return err
	}
	g.state = next
	return nil
}

// SelectCharacter starts a conversation with id; an empty id ends it.
func (g *Game) SelectCharacter(id string) error {
	return g.update(func(s *models.GameState, w *models.WorldConfig) (*models.GameState, error) {
		return SelectCharacter(s, w, id)
	})
}

func (g *Game) SelectScene(id string) error {
	return g.update(func(s *models.GameState, w *models.WorldConfig) (*models.GameState, error) {
		return SelectScene(s, w, id, g.ids, g.now())
	})
}

func (g *Game) AdvanceTime() error {
	return g.update(func(s *models.GameState, w *models.WorldConfig) (*models.GameState, error) {
		return AdvanceTime(s, w, g.ids, g.now()), nil
	})
}

func (g *Game) AddSystemMessage(content string) error {
	return g.update(func(s *models.GameState, _ *models.WorldConfig) (*models.GameState, error) {
		return AppendSystemMessage(s, content, g.ids, g.now()), nil
	})
}

// DismissEvent acknowledges the pending major event.
func (g *Game) DismissEvent() error {
	return g.update(func(s *models.GameState, _ *models.WorldConfig) (*models.GameState, error) {
		return DismissMajorEvent(s), nil
	})
}

// Reset ends the session and deletes its save.
func (g *Game) Reset(ctx context.Context) error {
	err := g.update(func(s *models.GameState, _ *models.WorldConfig) (*models.GameState, error) {
		next := s.Clone()
		next.Started = false
		next.Messages = nil
		next.HistorySummary = ""
		return next, nil
	})
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.streaming.Reset()
	g.mu.Unlock()
	return g.ClearSave(ctx)
}

// Save writes the current state to the store.
func (g *Game) Save(ctx context.Context) error {
	g.mu.RLock()
	if g.state == nil {
		g.mu.RUnlock()
		return ErrNotStarted
	}
	data, err := models.EncodeSnapshot(g.state, g.override)
	g.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := g.store.Save(ctx, g.saveKey, data); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// Load restores the saved session. It reports false, leaving the current
// game untouched, when there is no usable save.
func (g *Game) Load(ctx context.Context) bool {
	snap, ok := g.loadSnapshot(ctx)
	if !ok {
		return false
	}
	world := snap.WorldConfigOverride
	if world == nil {
		world = models.DefaultWorld()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy.Load() {
		return false
	}
	g.world, g.override = world, snap.WorldConfigOverride
	g.state = snap.State()
	g.phase = PhaseIdle
	g.streaming.Reset()
	g.logger.Info("Game loaded", zap.Int("round", g.state.Round), zap.String("world", world.Title))
	return true
}

// HasSave reports whether a usable save exists.
func (g *Game) HasSave(ctx context.Context) bool {
	_, ok := g.loadSnapshot(ctx)
	return ok
}

func (g *Game) loadSnapshot(ctx context.Context) (*models.Snapshot, bool) {
	data, err := g.store.Load(ctx, g.saveKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Warn("Failed to read save", zap.Error(err))
		}
		return nil, false
	}
	snap, err := models.DecodeSnapshot(data)
	if err != nil {
		g.logger.Warn("Ignoring unusable save", zap.Error(err))
		return nil, false
	}
	return snap, true
}

// ClearSave deletes the save, if any.
func (g *Game) ClearSave(ctx context.Context) error {
	if err := g.store.Delete(ctx, g.saveKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}

// ShareToken encodes the active world for a share link.
func (g *Game) ShareToken() (string, error) {
	return models.EncodeShareToken(g.World())
}

// ShareURL returns a link to base that carries the active world.
func (g *Game) ShareURL(base string) (string, error) {
	return models.BuildShareURL(base, g.World())
}
