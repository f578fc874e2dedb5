package narrative

import (
	"regexp"
	"strings"

	"github.com/tatianab/narrative-engine/internal/markers"
	"github.com/tatianab/narrative-engine/internal/models"
)

// DefaultAccent colors speakers when neither the palette nor the world has one.
const DefaultAccent = "#6366f1"

// LineKind classifies a rendered line.
type LineKind int

const (
	Narration LineKind = iota
	Mixed
	Speaker
	StatChange
)

// Line is one non-empty line of a paragraph.
type Line struct {
	Kind    LineKind
	Speaker string // display name for Speaker lines
	Color   string // speaker color for Speaker lines
	Text    string // trimmed source text, or the stat payload for StatChange
	Spans   []Span
}

// Paragraph is a parsed assistant message.
type Paragraph struct {
	Lines       []Line
	StatChanges []string // payloads of stat-delta brackets, in order
}

// Palette maps speaker names to colors.
type Palette struct {
	Speakers map[string]string
	Accent   string
}

// PaletteFor builds the palette of a world.
func PaletteFor(world *models.WorldConfig) Palette {
	return Palette{
		Speakers: world.CharacterColors(),
		Accent:   world.ThemeColors.Primary,
	}
}

// Color returns the color registered for name, falling back to the accent.
func (p Palette) Color(name string) string {
	if c := p.Speakers[name]; c != "" {
		return c
	}
	if p.Accent != "" {
		return p.Accent
	}
	return DefaultAccent
}

var (
	speakerLine = regexp.MustCompile(`^【([^】]+)】(.*)$`)
	statShaped  = regexp.MustCompile(`[+-]\d+`)
	hasDialogue = regexp.MustCompile(`["“＂][^"”＂]+["”＂]`)
	hasAction   = regexp.MustCompile(`[（(][^）)]+[）)]|\*[^*]+\*`)
)

// ParseLine classifies one line of marker-free text.
func ParseLine(line string, palette Palette) Line {
	trimmed := strings.TrimSpace(line)
	if m := speakerLine.FindStringSubmatch(trimmed); m != nil {
		name := m[1]
		if statShaped.MatchString(name) {
			return Line{Kind: StatChange, Text: name}
		}
		return Line{
			Kind:    Speaker,
			Speaker: name,
			Color:   palette.Color(name),
			Text:    trimmed,
			Spans:   Tokenize(m[2]),
		}
	}
	if hasDialogue.MatchString(trimmed) || hasAction.MatchString(trimmed) {
		return Line{Kind: Mixed, Text: trimmed, Spans: Tokenize(trimmed)}
	}
	return Line{Kind: Narration, Text: trimmed, Spans: []Span{plain(trimmed)}}
}

// ParseParagraph strips markers from a raw assistant message and parses what
// is left line by line. Stat-delta payloads are collected separately.
func ParseParagraph(raw string, palette Palette) Paragraph {
	p := Paragraph{StatChanges: markers.StatLabels(raw)}
	for _, l := range strings.Split(markers.Strip(raw), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		line := ParseLine(l, palette)
		if line.Kind == StatChange {
			p.StatChanges = append(p.StatChanges, line.Text)
			continue
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}
