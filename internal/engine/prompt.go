package engine

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/models"
)

//go:embed prompts/system_prompt.txt
var systemPrompt string

//go:embed prompts/generate_world.txt
var generateWorldPrompt string

//go:embed prompts/summarize_history.txt
var summarizeHistoryPrompt string

// summaryClip bounds each message fed to the history summary.
const summaryClip = 200

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildSystemPrompt renders the narrator instructions for the current state.
func BuildSystemPrompt(s *models.GameState, world *models.WorldConfig) (string, error) {
	data := struct {
		Title, Genre, NarrativeStyle, ScriptContent string
		Character                                   *models.Character
		Relations                                   string
		FirstAct                                    bool
		Round, Day, MaxDays                         int
		Period                                      string
		ActionPoints, MaxActionPoints               int
		SceneIcon, SceneName, SceneDescription      string
		PlayerStats                                 string
		CharacterSummary                            string
		GoalSummary                                 string
	}{
		Title:           world.Title,
		Genre:           world.Genre,
		NarrativeStyle:  world.NarrativeStyle,
		ScriptContent:   world.ScriptContent,
		FirstAct:        s.Round <= 1,
		Round:           s.Round,
		Day:             s.Day,
		MaxDays:         world.MaxDays,
		Period:          "未知",
		ActionPoints:    s.ActionPoints,
		MaxActionPoints: world.MaxActionPoints,
		SceneName:       "未知",
	}
	if p, ok := world.Period(s.Period); ok {
		data.Period = p.Name
	}
	if sc, ok := world.Scene(s.Scene); ok {
		data.SceneIcon, data.SceneName, data.SceneDescription = sc.Icon, sc.Name, sc.Description
	}
	if c, ok := world.Character(s.Character); ok {
		data.Character = &c
		data.Relations = statPairs(s.CharacterStats[c.ID], world.CharacterStats, "", " ")
	}

	data.PlayerStats = statPairs(s.PlayerStats, world.PlayerStats, ": ", " · ")

	var rel []string
	for _, c := range world.Characters {
		if c.Locked && !s.IsUnlocked(c.ID) {
			continue
		}
		stats, ok := s.CharacterStats[c.ID]
		if !ok {
			rel = append(rel, c.Name+": 无数据")
			continue
		}
		rel = append(rel, fmt.Sprintf("%s(%s): %s", c.Name, c.Title, statPairs(stats, world.CharacterStats, "", " ")))
	}
	data.CharacterSummary = strings.Join(rel, "\n")

	var goals []string
	for _, g := range s.Goals {
		mark := fmt.Sprintf("%d%%", g.Progress)
		if g.Completed {
			mark = "✅"
		}
		goals = append(goals, mark+" "+g.Title)
	}
	data.GoalSummary = strings.Join(goals, "\n")

	return render("system_prompt", systemPrompt, data)
}

// statPairs lists stats in declaration order, then any undeclared ones
// sorted by name.
func statPairs(stats map[string]int, declared []models.StatConfig, sep, join string) string {
	var out []string
	seen := make(map[string]bool, len(declared))
	for _, d := range declared {
		if v, ok := stats[d.Name]; ok {
			out = append(out, fmt.Sprintf("%s%s%d", d.Name, sep, v))
			seen[d.Name] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		if !seen[k] {
			out = append(out, fmt.Sprintf("%s%s%d", k, sep, stats[k]))
		}
	}
	return strings.Join(out, join)
}

// NarrateRequest is everything the narrator sees for one turn.
type NarrateRequest struct {
	State    *models.GameState
	World    *models.WorldConfig
	Summary  string
	Recent   []models.Message
	UserText string
}

// BuildMessages assembles the conversation for a turn: instructions, the
// history summary, the recent log and the player's new line.
func BuildMessages(req NarrateRequest) ([]chat.Message, error) {
	sys, err := BuildSystemPrompt(req.State, req.World)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	msgs := make([]chat.Message, 0, len(req.Recent)+3)
	msgs = append(msgs, chat.Message{Role: models.RoleSystem, Content: sys})
	if req.Summary != "" {
		msgs = append(msgs, chat.Message{Role: models.RoleSystem, Content: "[历史摘要] " + req.Summary})
	}
	for _, m := range req.Recent {
		msgs = append(msgs, chat.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, chat.Message{Role: models.RoleUser, Content: req.UserText})
	return msgs, nil
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func buildSummaryPrompt(msgs []models.Message) (string, error) {
	clipped := make([]models.Message, len(msgs))
	for i, m := range msgs {
		m.Content = clip(m.Content, summaryClip)
		clipped[i] = m
	}
	return render("summarize_history", summarizeHistoryPrompt, struct{ Messages []models.Message }{clipped})
}
