package models

import (
	"maps"
	"slices"
	"time"
)

// MessageLogLimit bounds the in-memory message log. Older entries are folded
// into the history summary before they are dropped.
const MessageLogLimit = 120

// Role identifies the author of a message in the conversation log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ThemeColors is the palette a world asks the renderer to use.
type ThemeColors struct {
	Primary       string `json:"primary" yaml:"primary"`
	PrimaryLight  string `json:"primaryLight" yaml:"primaryLight"`
	Accent        string `json:"accent" yaml:"accent"`
	BgPrimary     string `json:"bgPrimary" yaml:"bgPrimary"`
	BgSecondary   string `json:"bgSecondary" yaml:"bgSecondary"`
	BgCard        string `json:"bgCard" yaml:"bgCard"`
	TextPrimary   string `json:"textPrimary" yaml:"textPrimary"`
	TextSecondary string `json:"textSecondary" yaml:"textSecondary"`
}

// Character is a member of the world's roster.
type Character struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"` // display name, used by markers
	Avatar       string         `json:"avatar" yaml:"avatar"`
	Title        string         `json:"title" yaml:"title"`
	ThemeColor   string         `json:"themeColor" yaml:"themeColor"`
	Description  string         `json:"description" yaml:"description"`
	InitialStats map[string]int `json:"initialStats" yaml:"initialStats"`
	Locked       bool           `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// Scene is a place the player can move to.
type Scene struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Icon        string   `json:"icon" yaml:"icon"`
	Description string   `json:"description" yaml:"description"`
	Background  string   `json:"background,omitempty" yaml:"background,omitempty"`
	Characters  []string `json:"characters,omitempty" yaml:"characters,omitempty"` // character ids
}

// StatConfig declares a stat and the aliases the model may use for it.
type StatConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases" yaml:"aliases"`
	Color   string   `json:"color" yaml:"color"`
	Icon    string   `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// TimePeriod is one slot of the in-game day.
type TimePeriod struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Hours string `json:"hours" yaml:"hours"`
}

// Goal is a long-running objective. Once Completed is set it never reverts.
type Goal struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Condition string `json:"condition" yaml:"condition"`
	Progress  int    `json:"progress" yaml:"progress"` // 0..100
	Completed bool   `json:"completed" yaml:"completed"`
}

// KeyEvent is an entry in the story log. Events are never edited once created.
type KeyEvent struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Round       int      `json:"round" yaml:"round"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Major       bool     `json:"major" yaml:"major"`
}

// Item is an inventory entry.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Icon        string `json:"icon" yaml:"icon"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Message is one entry of the conversation log. Assistant content is kept raw,
// markers included, so the context window can be rebuilt verbatim.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Character string    `json:"character,omitempty" yaml:"character,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// WorldConfig is the full definition of a playable world: the built-in default,
// a YAML world file, a generated world or one decoded from a share token.
type WorldConfig struct {
	Title              string         `json:"title" yaml:"title"`
	Genre              string         `json:"genre" yaml:"genre"`
	Description        string         `json:"description" yaml:"description"`
	Icon               string         `json:"icon" yaml:"icon"`
	NarrativeStyle     string         `json:"narrativeStyle" yaml:"narrativeStyle"`
	ScriptContent      string         `json:"scriptContent,omitempty" yaml:"scriptContent,omitempty"`
	ThemeColors        ThemeColors    `json:"themeColors" yaml:"themeColors"`
	MaxDays            int            `json:"maxDays" yaml:"maxDays"`
	MaxActionPoints    int            `json:"maxActionPoints" yaml:"maxActionPoints"`
	Periods            []TimePeriod   `json:"periods" yaml:"periods"`
	Characters         []Character    `json:"characters" yaml:"characters"`
	Scenes             []Scene        `json:"scenes" yaml:"scenes"`
	Goals              []Goal         `json:"goals" yaml:"goals"`
	PlayerStats        []StatConfig   `json:"playerStats" yaml:"playerStats"`
	InitialPlayerStats map[string]int `json:"initialPlayerStats" yaml:"initialPlayerStats"`
	CharacterStats     []StatConfig   `json:"characterStats" yaml:"characterStats"`
	Items              []Item         `json:"items,omitempty" yaml:"items,omitempty"`
}

// GameState is the canonical state of one session. It is only ever replaced
// wholesale by the reducer; readers get clones.
type GameState struct {
	Started            bool
	Day                int
	Period             int
	ActionPoints       int
	Scene              string // scene id
	Character          string // character id, empty when nobody is selected
	Round              int
	Messages           []Message
	HistorySummary     string
	PlayerStats        map[string]int
	CharacterStats     map[string]map[string]int
	Goals              []Goal
	KeyEvents          []KeyEvent // newest first
	Inventory          []Item
	UnlockedCharacters map[string]struct{}
	CurrentActions     []string
	PendingMajorEvent  *KeyEvent // awaiting acknowledgement, never persisted
}

// NewGameState builds the opening state for a world.
func NewGameState(world *WorldConfig) *GameState {
	s := &GameState{
		Started:            true,
		Day:                1,
		Period:             0,
		ActionPoints:       world.MaxActionPoints,
		PlayerStats:        maps.Clone(world.InitialPlayerStats),
		CharacterStats:     make(map[string]map[string]int, len(world.Characters)),
		Goals:              slices.Clone(world.Goals),
		Inventory:          slices.Clone(world.Items),
		UnlockedCharacters: make(map[string]struct{}),
		CurrentActions:     []string{},
	}
	if s.PlayerStats == nil {
		s.PlayerStats = make(map[string]int)
	}
	if len(world.Scenes) > 0 {
		s.Scene = world.Scenes[0].ID
	}
	for _, c := range world.Characters {
		stats := maps.Clone(c.InitialStats)
		if stats == nil {
			stats = make(map[string]int)
		}
		s.CharacterStats[c.ID] = stats
		if !c.Locked {
			s.UnlockedCharacters[c.ID] = struct{}{}
		}
	}
	return s
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = slices.Clone(s.Messages)
	c.PlayerStats = maps.Clone(s.PlayerStats)
	c.CharacterStats = make(map[string]map[string]int, len(s.CharacterStats))
	for id, stats := range s.CharacterStats {
		c.CharacterStats[id] = maps.Clone(stats)
	}
	c.Goals = slices.Clone(s.Goals)
	c.KeyEvents = make([]KeyEvent, len(s.KeyEvents))
	for i, e := range s.KeyEvents {
		e.Tags = slices.Clone(e.Tags)
		c.KeyEvents[i] = e
	}
	c.Inventory = slices.Clone(s.Inventory)
	c.UnlockedCharacters = maps.Clone(s.UnlockedCharacters)
	if c.UnlockedCharacters == nil {
		c.UnlockedCharacters = make(map[string]struct{})
	}
	c.CurrentActions = slices.Clone(s.CurrentActions)
	if s.PendingMajorEvent != nil {
		e := *s.PendingMajorEvent
		e.Tags = slices.Clone(e.Tags)
		c.PendingMajorEvent = &e
	}
	return &c
}

// IsUnlocked reports whether the character can be talked to.
func (s *GameState) IsUnlocked(id string) bool {
	_, ok := s.UnlockedCharacters[id]
	return ok
}

// Unlocked returns the unlocked character ids in sorted order.
func (s *GameState) Unlocked() []string {
	return slices.Sorted(maps.Keys(s.UnlockedCharacters))
}
