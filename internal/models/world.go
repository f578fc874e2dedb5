package models

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize when a world leaves them unset.
const (
	DefaultMaxDays         = 15
	DefaultMaxActionPoints = 6
)

// ErrInvalidWorld is returned when a world definition misses required fields.
var ErrInvalidWorld = errors.New("invalid world config")

// Character looks a character up by id.
func (w *WorldConfig) Character(id string) (Character, bool) {
	for _, c := range w.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// CharacterByName looks a character up by display name.
func (w *WorldConfig) CharacterByName(name string) (Character, bool) {
	for _, c := range w.Characters {
		if c.Name == name {
			return c, true
		}
	}
	return Character{}, false
}

// Scene looks a scene up by id.
func (w *WorldConfig) Scene(id string) (Scene, bool) {
	for _, s := range w.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}

// Period returns the period at index, if any.
func (w *WorldConfig) Period(index int) (TimePeriod, bool) {
	if index < 0 || index >= len(w.Periods) {
		return TimePeriod{}, false
	}
	return w.Periods[index], true
}

// ResolvePlayerStat maps a stat name or alias to its canonical player stat name.
func (w *WorldConfig) ResolvePlayerStat(name string) (string, bool) {
	return resolveStat(w.PlayerStats, name)
}

// ResolveCharacterStat maps a stat name or alias to its canonical relationship stat name.
func (w *WorldConfig) ResolveCharacterStat(name string) (string, bool) {
	return resolveStat(w.CharacterStats, name)
}

func resolveStat(configs []StatConfig, name string) (string, bool) {
	for _, c := range configs {
		if c.Name == name {
			return c.Name, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c.Name, true
			}
		}
	}
	return "", false
}

// CharacterColors maps display names to theme colors.
func (w *WorldConfig) CharacterColors() map[string]string {
	colors := make(map[string]string, len(w.Characters))
	for _, c := range w.Characters {
		colors[c.Name] = c.ThemeColor
	}
	return colors
}

// Validate reports every missing required field.
func (w *WorldConfig) Validate() error {
	var missing []string
	check := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	check(w.Title != "", "title")
	check(w.Genre != "", "genre")
	check(w.Description != "", "description")
	check(w.Icon != "", "icon")
	check(len(w.Characters) > 0, "characters")
	check(len(w.Scenes) > 0, "scenes")
	check(len(w.Goals) > 0, "goals")
	check(len(w.PlayerStats) > 0, "playerStats")
	check(len(w.CharacterStats) > 0, "characterStats")
	check(len(w.Periods) > 0, "periods")
	check(w.ThemeColors.Primary != "", "themeColors")
	check(w.InitialPlayerStats != nil, "initialPlayerStats")
	check(w.NarrativeStyle != "", "narrativeStyle")
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidWorld, strings.Join(missing, ", "))
	}
	return nil
}

// Normalize fills optional fields a generated world may leave out.
func (w *WorldConfig) Normalize() {
	if w.MaxDays < 1 {
		w.MaxDays = DefaultMaxDays
	}
	if w.MaxActionPoints < 1 {
		w.MaxActionPoints = DefaultMaxActionPoints
	}
	for i := range w.Goals {
		g := &w.Goals[i]
		if g.ID == "" {
			g.ID = fmt.Sprintf("g%d", i+1)
		}
		if g.Title == "" {
			g.Title = "未命名目标"
		}
		g.Progress = min(max(g.Progress, 0), 100)
		if g.Progress == 100 {
			g.Completed = true
		}
	}
	for i := range w.Characters {
		if w.Characters[i].InitialStats == nil {
			w.Characters[i].InitialStats = map[string]int{}
		}
	}
	for i := range w.PlayerStats {
		if w.PlayerStats[i].Aliases == nil {
			w.PlayerStats[i].Aliases = []string{}
		}
	}
	for i := range w.CharacterStats {
		if w.CharacterStats[i].Aliases == nil {
			w.CharacterStats[i].Aliases = []string{}
		}
	}
	for i := range w.Periods {
		w.Periods[i].Index = i
	}
	if w.InitialPlayerStats == nil {
		w.InitialPlayerStats = map[string]int{}
	}
}

// LoadWorldFile reads a world definition from a YAML (or JSON) file.
func LoadWorldFile(path string) (*WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var world WorldConfig
	if err := yaml.Unmarshal(data, &world); err != nil {
		return nil, fmt.Errorf("parse world file %s: %w", path, err)
	}
	world.Normalize()
	if err := world.Validate(); err != nil {
		return nil, err
	}
	return &world, nil
}
