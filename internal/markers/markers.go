// Package markers implements the bracket protocol the narrator embeds in its
// prose: extraction of state-changing markers and stripping them for display.
//
// Markers use full-width brackets 【…】:
//
//	【StatName+N】 / 【StatName+N，StatName-N】   stat delta
//	【目标更新:Title +N%】                         goal progress
//	【关键事件:Title】Description                  minor event
//	【重大事件:Title】Description                  major event
//	【解锁角色:Name】                              character unlock
//	【获得物品:Name·Description】                  item grant
//	【行动选项】1. A 2. B 3. C                     next-turn options
package markers

import (
	"github.com/tatianab/narrative-engine/internal/models"
)

// Kind enumerates the marker variants in their extraction priority.
type Kind int

const (
	KindStatDelta Kind = iota
	KindGoalUpdate
	KindEvent
	KindCharacterUnlock
	KindItemGrant
	KindActionOptions
)

func (k Kind) String() string {
	switch k {
	case KindStatDelta:
		return "stat_delta"
	case KindGoalUpdate:
		return "goal_update"
	case KindEvent:
		return "event"
	case KindCharacterUnlock:
		return "character_unlock"
	case KindItemGrant:
		return "item_grant"
	case KindActionOptions:
		return "action_options"
	}
	return "unknown"
}

// DefaultItemIcon is used for granted items; the model never supplies one.
const DefaultItemIcon = "📦"

// Marker is one extracted directive.
type Marker interface {
	Kind() Kind
	marker()
}

// StatScope tells whether a stat delta targets the player or a character.
type StatScope int

const (
	ScopePlayer StatScope = iota
	ScopeCharacter
)

// StatDelta changes a stat by Delta. For ScopeCharacter an empty CharacterID
// means the character the player is currently talking to.
type StatDelta struct {
	Scope       StatScope
	CharacterID string
	Stat        string // canonical stat name
	Name        string // as written by the model
	Delta       int
}

// GoalUpdate advances the goal whose title matches exactly.
type GoalUpdate struct {
	Title        string
	DeltaPercent int
}

// Event records a story event; Major ones need acknowledgement.
type Event struct {
	Title       string
	Description string
	Major       bool
}

// CharacterUnlock unlocks a roster character.
type CharacterUnlock struct {
	Name        string
	CharacterID string
}

// ItemGrant adds an item to the inventory.
type ItemGrant struct {
	Name        string
	Icon        string
	Description string
}

// ActionOptions is the list of suggested next actions.
type ActionOptions struct {
	Options []string
}

func (StatDelta) Kind() Kind       { return KindStatDelta }
func (GoalUpdate) Kind() Kind      { return KindGoalUpdate }
func (Event) Kind() Kind           { return KindEvent }
func (CharacterUnlock) Kind() Kind { return KindCharacterUnlock }
func (ItemGrant) Kind() Kind       { return KindItemGrant }
func (ActionOptions) Kind() Kind   { return KindActionOptions }

func (StatDelta) marker()       {}
func (GoalUpdate) marker()      {}
func (Event) marker()           {}
func (CharacterUnlock) marker() {}
func (ItemGrant) marker()       {}
func (ActionOptions) marker()   {}

// Batch is everything extracted from one completed turn.
type Batch struct {
	StatDeltas    []StatDelta
	GoalUpdates   []GoalUpdate
	Events        []Event
	Unlocks       []CharacterUnlock
	Items         []ItemGrant
	ActionOptions []string // empty when the turn declared none
}

// Markers flattens the batch in priority order, which is also the order the
// reducer applies them in.
func (b Batch) Markers() []Marker {
	var out []Marker
	for _, m := range b.StatDeltas {
		out = append(out, m)
	}
	for _, m := range b.GoalUpdates {
		out = append(out, m)
	}
	for _, m := range b.Events {
		out = append(out, m)
	}
	for _, m := range b.Unlocks {
		out = append(out, m)
	}
	for _, m := range b.Items {
		out = append(out, m)
	}
	if len(b.ActionOptions) > 0 {
		out = append(out, ActionOptions{Options: b.ActionOptions})
	}
	return out
}

// Empty reports whether nothing was extracted.
func (b Batch) Empty() bool {
	return len(b.StatDeltas) == 0 && len(b.GoalUpdates) == 0 && len(b.Events) == 0 &&
		len(b.Unlocks) == 0 && len(b.Items) == 0 && len(b.ActionOptions) == 0
}

// Vocabulary is what extraction resolves names against.
type Vocabulary struct {
	Characters     []models.Character
	PlayerStats    []models.StatConfig
	CharacterStats []models.StatConfig
}

// VocabularyFor builds the vocabulary of a world.
func VocabularyFor(world *models.WorldConfig) Vocabulary {
	return Vocabulary{
		Characters:     world.Characters,
		PlayerStats:    world.PlayerStats,
		CharacterStats: world.CharacterStats,
	}
}
