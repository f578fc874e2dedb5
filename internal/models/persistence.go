package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the current save schema. Saves written with any other
// version are treated as absent.
const SnapshotVersion = 1

// SnapshotMessageLimit is how many trailing messages a save keeps.
const SnapshotMessageLimit = 30

var (
	ErrSnapshotVersion = errors.New("snapshot version mismatch")
	ErrSnapshotInvalid = errors.New("snapshot is incomplete")
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Version             int                       `yaml:"version"`
	WorldConfigOverride *WorldConfig              `yaml:"worldConfigOverride,omitempty"`
	Day                 int                       `yaml:"day"`
	Period              int                       `yaml:"period"`
	ActionPoints        int                       `yaml:"actionPoints"`
	Scene               string                    `yaml:"scene"`
	Character           string                    `yaml:"character"`
	Round               int                       `yaml:"round"`
	PlayerStats         map[string]int            `yaml:"playerStats"`
	CharacterStats      map[string]map[string]int `yaml:"characterStats"`
	Goals               []Goal                    `yaml:"goals"`
	KeyEvents           []KeyEvent                `yaml:"keyEvents"`
	Inventory           []Item                    `yaml:"inventory"`
	CurrentActions      []string                  `yaml:"currentActions"`
	UnlockedCharacters  []string                  `yaml:"unlockedCharacters"`
	Messages            []Message                 `yaml:"messages"`
	HistorySummary      string                    `yaml:"historySummary"`
}

// NewSnapshot captures the persistable part of a state. override is the
// active world when it is not the built-in one, nil otherwise.
func NewSnapshot(s *GameState, override *WorldConfig) *Snapshot {
	msgs := s.Messages
	if len(msgs) > SnapshotMessageLimit {
		msgs = msgs[len(msgs)-SnapshotMessageLimit:]
	}
	c := s.Clone()
	return &Snapshot{
		Version:             SnapshotVersion,
		WorldConfigOverride: override,
		Day:                 c.Day,
		Period:              c.Period,
		ActionPoints:        c.ActionPoints,
		Scene:               c.Scene,
		Character:           c.Character,
		Round:               c.Round,
		PlayerStats:         c.PlayerStats,
		CharacterStats:      c.CharacterStats,
		Goals:               c.Goals,
		KeyEvents:           c.KeyEvents,
		Inventory:           c.Inventory,
		CurrentActions:      c.CurrentActions,
		UnlockedCharacters:  c.Unlocked(),
		Messages:            slices.Clone(msgs),
		HistorySummary:      c.HistorySummary,
	}
}

// EncodeSnapshot serializes a state into a save blob.
func EncodeSnapshot(s *GameState, override *WorldConfig) ([]byte, error) {
	return yaml.Marshal(NewSnapshot(s, override))
}

// DecodeSnapshot parses and validates a save blob. Nothing is hydrated here;
// callers only build a state from a snapshot that decoded cleanly.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var header struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if header.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotVersion, header.Version, SnapshotVersion)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Day < 1 || snap.PlayerStats == nil {
		return nil, ErrSnapshotInvalid
	}
	if snap.WorldConfigOverride != nil {
		if err := snap.WorldConfigOverride.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
		}
	}
	return &snap, nil
}

// State builds a fresh game state from the snapshot.
func (s *Snapshot) State() *GameState {
	st := &GameState{
		Started:            true,
		Day:                s.Day,
		Period:             s.Period,
		ActionPoints:       s.ActionPoints,
		Scene:              s.Scene,
		Character:          s.Character,
		Round:              s.Round,
		Messages:           slices.Clone(s.Messages),
		HistorySummary:     s.HistorySummary,
		PlayerStats:        maps.Clone(s.PlayerStats),
		CharacterStats:     make(map[string]map[string]int, len(s.CharacterStats)),
		Goals:              slices.Clone(s.Goals),
		KeyEvents:          slices.Clone(s.KeyEvents),
		Inventory:          slices.Clone(s.Inventory),
		UnlockedCharacters: make(map[string]struct{}, len(s.UnlockedCharacters)),
		CurrentActions:     slices.Clone(s.CurrentActions),
	}
	for id, stats := range s.CharacterStats {
		st.CharacterStats[id] = maps.Clone(stats)
	}
	for _, id := range s.UnlockedCharacters {
		st.UnlockedCharacters[id] = struct{}{}
	}
	if st.CurrentActions == nil {
		st.CurrentActions = []string{}
	}
	return st
}
