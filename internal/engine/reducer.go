package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tatianab/narrative-engine/internal/markers"
	"github.com/tatianab/narrative-engine/internal/models"
)

var (
	ErrUnknownScene     = errors.New("unknown scene")
	ErrUnknownCharacter = errors.New("unknown character")
	ErrCharacterLocked  = errors.New("character is locked")
)

const (
	statMin = 0
	statMax = 100

	eventTag = "剧情"
	itemType = "获得"
)

// IDSource hands out ids for new messages, events and items.
type IDSource interface {
	MessageID() string
	EventID() string
	ItemID() string
}

// UUIDSource is the IDSource used outside tests.
type UUIDSource struct{}

func (UUIDSource) MessageID() string { return "msg-" + uuid.NewString() }
func (UUIDSource) EventID() string   { return "evt-" + uuid.NewString() }
func (UUIDSource) ItemID() string    { return "item-" + uuid.NewString() }

// Turn is one completed exchange, ready to be folded into the state.
type Turn struct {
	UserText  string
	Reply     string // raw model output, markers included
	Character string // id of the character addressed, may be empty
	Batch     markers.Batch
	At        time.Time
}

// The functions below never modify their input state. Each returns a new
// generation built from a deep copy.

// Reduce appends the turn to the log and applies its markers in priority
// order: stats, goals, events, unlocks, items, then action options.
func Reduce(prev *models.GameState, world *models.WorldConfig, t Turn, ids IDSource) *models.GameState {
	next := prev.Clone()
	next.Round++
	appendMessage(next, models.Message{ID: ids.MessageID(), Role: models.RoleUser, Content: t.UserText, Timestamp: t.At})

	applyStats(next, world, t.Batch.StatDeltas, t.Character)
	applyGoals(next, t.Batch.GoalUpdates)
	applyEvents(next, t.Batch.Events, ids)
	applyUnlocks(next, world, t.Batch.Unlocks)
	applyItems(next, t.Batch.Items, ids)
	next.CurrentActions = slices.Clone(t.Batch.ActionOptions)
	if next.CurrentActions == nil {
		next.CurrentActions = []string{}
	}

	appendMessage(next, models.Message{
		ID:        ids.MessageID(),
		Role:      models.RoleAssistant,
		Content:   t.Reply,
		Character: t.Character,
		Timestamp: t.At,
	})
	return next
}

// ApplyFallback records a turn whose reply could not be used. t.Reply holds
// the substitute narration; no marker is applied and the action options are
// left as they were.
func ApplyFallback(prev *models.GameState, t Turn, ids IDSource) *models.GameState {
	next := prev.Clone()
	next.Round++
	appendMessage(next, models.Message{ID: ids.MessageID(), Role: models.RoleUser, Content: t.UserText, Timestamp: t.At})
	appendMessage(next, models.Message{
		ID:        ids.MessageID(),
		Role:      models.RoleAssistant,
		Content:   t.Reply,
		Character: t.Character,
		Timestamp: t.At,
	})
	return next
}

func clampStat(v int) int {
	return min(max(v, statMin), statMax)
}

// clampDelta bounds a step so adding it to an in-range value cannot overflow.
func clampDelta(d int) int {
	return min(max(d, -markers.MaxDelta), markers.MaxDelta)
}

func applyStats(s *models.GameState, world *models.WorldConfig, deltas []markers.StatDelta, current string) {
	for _, d := range deltas {
		switch d.Scope {
		case markers.ScopePlayer:
			s.PlayerStats[d.Stat] = clampStat(s.PlayerStats[d.Stat] + clampDelta(d.Delta))
		case markers.ScopeCharacter:
			id := d.CharacterID
			if id == "" {
				id = current
			}
			if _, ok := world.Character(id); !ok {
				continue
			}
			stats := s.CharacterStats[id]
			if stats == nil {
				stats = make(map[string]int)
				s.CharacterStats[id] = stats
			}
			stats[d.Stat] = clampStat(stats[d.Stat] + clampDelta(d.Delta))
		}
	}
}

func applyGoals(s *models.GameState, updates []markers.GoalUpdate) {
	for _, u := range updates {
		i := slices.IndexFunc(s.Goals, func(g models.Goal) bool { return g.Title == u.Title })
		if i < 0 {
			continue
		}
		g := &s.Goals[i]
		if g.Completed {
			continue
		}
		g.Progress = min(statMax, g.Progress+max(0, clampDelta(u.DeltaPercent)))
		if g.Progress >= statMax {
			g.Completed = true
		}
	}
}

func applyEvents(s *models.GameState, events []markers.Event, ids IDSource) {
	for _, e := range events {
		ev := models.KeyEvent{
			ID:          ids.EventID(),
			Title:       e.Title,
			Description: e.Description,
			Round:       s.Round,
			Tags:        []string{eventTag},
			Major:       e.Major,
		}
		s.KeyEvents = slices.Insert(s.KeyEvents, 0, ev)
		if e.Major {
			pending := ev
			pending.Tags = slices.Clone(ev.Tags)
			s.PendingMajorEvent = &pending
		}
	}
}

func applyUnlocks(s *models.GameState, world *models.WorldConfig, unlocks []markers.CharacterUnlock) {
	for _, u := range unlocks {
		c, ok := world.Character(u.CharacterID)
		if !ok {
			if c, ok = world.CharacterByName(u.Name); !ok {
				continue
			}
		}
		s.UnlockedCharacters[c.ID] = struct{}{}
	}
}

func applyItems(s *models.GameState, items []markers.ItemGrant, ids IDSource) {
	for _, it := range items {
		icon := it.Icon
		if icon == "" {
			icon = markers.DefaultItemIcon
		}
		s.Inventory = append(s.Inventory, models.Item{
			ID:          ids.ItemID(),
			Name:        it.Name,
			Icon:        icon,
			Type:        itemType,
			Description: it.Description,
		})
	}
}

// appendMessage adds m to the log, dropping the oldest entries past the limit.
func appendMessage(s *models.GameState, m models.Message) {
	s.Messages = append(s.Messages, m)
	if over := len(s.Messages) - models.MessageLogLimit; over > 0 {
		s.Messages = slices.Delete(s.Messages, 0, over)
	}
}

// AppendSystemMessage adds a system line to the log.
func AppendSystemMessage(prev *models.GameState, content string, ids IDSource, at time.Time) *models.GameState {
	next := prev.Clone()
	appendMessage(next, models.Message{ID: ids.MessageID(), Role: models.RoleSystem, Content: content, Timestamp: at})
	return next
}

// SetHistorySummary records the summary of the older part of the log.
func SetHistorySummary(prev *models.GameState, summary string) *models.GameState {
	next := prev.Clone()
	next.HistorySummary = summary
	return next
}

// AdvanceTime moves to the next period. Past the last period of the day it
// wraps to the first, starts a new day and refills the action points.
func AdvanceTime(prev *models.GameState, world *models.WorldConfig, ids IDSource, at time.Time) *models.GameState {
	next := prev.Clone()
	next.Period++
	if next.Period >= len(world.Periods) {
		next.Period = 0
		next.Day++
		next.ActionPoints = world.MaxActionPoints
	}
	name := "未知"
	if p, ok := world.Period(next.Period); ok {
		name = p.Name
	}
	appendMessage(next, models.Message{
		ID:        ids.MessageID(),
		Role:      models.RoleSystem,
		Content:   fmt.Sprintf("时间来到了第 %d 天 · %s", next.Day, name),
		Timestamp: at,
	})
	return next
}

// SelectScene moves the player and leaves the current conversation.
func SelectScene(prev *models.GameState, world *models.WorldConfig, id string, ids IDSource, at time.Time) (*models.GameState, error) {
	scene, ok := world.Scene(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	next := prev.Clone()
	next.Scene = scene.ID
	next.Character = ""
	appendMessage(next, models.Message{
		ID:        ids.MessageID(),
		Role:      models.RoleSystem,
		Content:   fmt.Sprintf("你来到了%s %s。%s", scene.Icon, scene.Name, scene.Description),
		Timestamp: at,
	})
	return next, nil
}

// SelectCharacter starts talking to an unlocked character. An empty id ends
// the conversation.
func SelectCharacter(prev *models.GameState, world *models.WorldConfig, id string) (*models.GameState, error) {
	if id != "" {
		if _, ok := world.Character(id); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, id)
		}
		if !prev.IsUnlocked(id) {
			return nil, fmt.Errorf("%w: %q", ErrCharacterLocked, id)
		}
	}
	next := prev.Clone()
	next.Character = id
	return next, nil
}

// DismissMajorEvent acknowledges the pending major event.
func DismissMajorEvent(prev *models.GameState) *models.GameState {
	next := prev.Clone()
	next.PendingMajorEvent = nil
	return next
}
