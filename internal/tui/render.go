package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/narrative-engine/internal/models"
	"github.com/tatianab/narrative-engine/internal/narrative"
)

var (
	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C7C9C")).
			Italic(true)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9A9A9A")).
			Italic(true)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#F59E0B")).
			PaddingLeft(1).
			PaddingRight(1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AFFF"))
)

func (m model) renderLog() string {
	s := m.game.State()
	if s == nil {
		return ""
	}
	palette := m.game.Palette()
	width := m.logWidth()

	var b strings.Builder
	for _, msg := range s.Messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Width(width).Render("> " + msg.Content))
		case models.RoleSystem:
			b.WriteString(systemStyle.Width(width).Render(msg.Content))
		default:
			b.WriteString(renderParagraph(narrative.ParseParagraph(msg.Content, palette), width))
		}
		b.WriteString("\n\n")
	}
	if streaming := m.game.Streaming(); streaming != "" {
		b.WriteString(renderParagraph(narrative.ParseParagraph(streaming, palette), width))
		b.WriteString(helpStyle.Render(" …"))
	} else if m.events != nil {
		b.WriteString(helpStyle.Render("叙述者正在构思……"))
	}
	return b.String()
}

func renderParagraph(p narrative.Paragraph, width int) string {
	var lines []string
	for _, l := range p.Lines {
		switch l.Kind {
		case narrative.Speaker:
			color := lipgloss.Color(l.Color)
			name := lipgloss.NewStyle().Foreground(color).Bold(true).Render("【" + l.Speaker + "】")
			lines = append(lines, gameStyle.Width(width).Render(name+renderSpans(l.Spans, color)))
		case narrative.Mixed:
			lines = append(lines, gameStyle.Width(width).Render(renderSpans(l.Spans, lipgloss.Color("#E0E0FF"))))
		default:
			lines = append(lines, gameStyle.Width(width).Render(l.Text))
		}
	}
	if len(p.StatChanges) > 0 {
		var badges []string
		for _, c := range p.StatChanges {
			badges = append(badges, statStyle.Render(c))
		}
		lines = append(lines, strings.Join(badges, " "))
	}
	return strings.Join(lines, "\n")
}

func renderSpans(spans []narrative.Span, dialogue lipgloss.Color) string {
	var b strings.Builder
	for _, sp := range spans {
		switch sp.Kind {
		case narrative.Action:
			b.WriteString(actionStyle.Render(sp.Raw))
		case narrative.Dialogue:
			b.WriteString(lipgloss.NewStyle().Foreground(dialogue).Render(sp.Raw))
		default:
			b.WriteString(sp.Raw)
		}
	}
	return b.String()
}

func (m model) renderActions() string {
	s := m.game.State()
	if s == nil || len(s.CurrentActions) == 0 || m.events != nil {
		return ""
	}
	var opts []string
	for i, a := range s.CurrentActions {
		opts = append(opts, optionStyle.Render(fmt.Sprintf("%d. %s", i+1, a)))
	}
	return strings.Join(opts, "\n")
}

func (m model) renderState() string {
	s := m.game.State()
	world := m.game.World()
	if s == nil {
		return ""
	}

	var b strings.Builder
	section := func(title string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(title) + "\n")
	}

	section("时间")
	period := ""
	if p, ok := world.Period(s.Period); ok {
		period = p.Icon + " " + p.Name
	}
	fmt.Fprintf(&b, "第 %d/%d 天 %s\n行动力 %d/%d\n", s.Day, world.MaxDays, period, s.ActionPoints, world.MaxActionPoints)

	section("场景")
	if sc, ok := world.Scene(s.Scene); ok {
		b.WriteString(sc.Icon + " " + sc.Name + "\n")
	}
	if c, ok := world.Character(s.Character); ok {
		b.WriteString("正在与 " + c.Avatar + " " + c.Name + " 交谈\n")
	}

	section("属性")
	for _, st := range world.PlayerStats {
		fmt.Fprintf(&b, "%s %s %d\n", st.Icon, st.Name, s.PlayerStats[st.Name])
	}

	section("角色")
	for _, c := range world.Characters {
		if !s.IsUnlocked(c.ID) {
			b.WriteString("🔒 ???\n")
			continue
		}
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(c.ThemeColor)).Render(c.Avatar + " " + c.Name)
		var stats []string
		for _, st := range world.CharacterStats {
			stats = append(stats, fmt.Sprintf("%s%d", st.Name, s.CharacterStats[c.ID][st.Name]))
		}
		b.WriteString(name + " " + strings.Join(stats, " ") + "\n")
	}

	section("目标")
	for _, g := range s.Goals {
		mark := fmt.Sprintf("%3d%%", g.Progress)
		if g.Completed {
			mark = "  ✅"
		}
		b.WriteString(mark + " " + g.Title + "\n")
	}

	section("物品")
	if len(s.Inventory) == 0 {
		b.WriteString("(空)\n")
	}
	for _, it := range s.Inventory {
		b.WriteString(it.Icon + " " + it.Name + "\n")
	}

	if len(s.KeyEvents) > 0 {
		section("事件")
		for _, e := range s.KeyEvents[:min(3, len(s.KeyEvents))] {
			fmt.Fprintf(&b, "R%d %s\n", e.Round, e.Title)
		}
	}

	width := max(m.width-m.logWidth()-4, 20)
	return stateStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

// sceneID resolves a scene by id or display name.
func sceneID(world *models.WorldConfig, arg string) (string, bool) {
	for _, sc := range world.Scenes {
		if arg != "" && (sc.ID == arg || sc.Name == arg) {
			return sc.ID, true
		}
	}
	return "", false
}

func sceneList(world *models.WorldConfig) string {
	var names []string
	for _, sc := range world.Scenes {
		names = append(names, sc.Icon+sc.Name)
	}
	return strings.Join(names, "、")
}

// characterID resolves a character by id or display name. An empty argument
// ends the conversation.
func characterID(world *models.WorldConfig, arg string) (string, bool) {
	if arg == "" {
		return "", true
	}
	if c, ok := world.Character(arg); ok {
		return c.ID, true
	}
	if c, ok := world.CharacterByName(arg); ok {
		return c.ID, true
	}
	return "", false
}

func characterList(world *models.WorldConfig, s *models.GameState) string {
	var names []string
	for _, c := range world.Characters {
		if s != nil && s.IsUnlocked(c.ID) {
			names = append(names, c.Avatar+c.Name)
		}
	}
	return strings.Join(names, "、")
}
