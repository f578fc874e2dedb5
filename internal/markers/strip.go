package markers

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	spaceAroundLF   = regexp.MustCompile(` ?\n ?`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// stripOrder removes keyword markers before stat-shaped brackets, so an
// event whose title happens to look like a stat delta still takes its
// description with it.
var stripOrder = []*regexp.Regexp{
	goalPattern,
	eventPattern,
	unlockPattern,
	itemPattern,
	actionsPattern,
	reservedPattern,
	statPattern,
}

// Strip removes every recognized marker from text and tidies the whitespace
// left behind. Brackets that match no marker shape, such as speaker labels,
// are kept. Strip is idempotent and never grows its input.
func Strip(text string) string {
	out := text
	// Removing one marker can splice the halves of another together, so
	// repeat until nothing matches. Every pass that changes out shortens it.
	for range len(text) + 1 {
		next := stripOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func stripOnce(text string) string {
	for _, p := range stripOrder {
		text = p.ReplaceAllLiteralString(text, "")
	}
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundLF.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// HasReservedPrefix reports whether text still contains a marker keyword.
func HasReservedPrefix(text string) bool {
	for _, p := range reservedPrefixes {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
