// Package narrative turns marker-free narrator prose into typed spans and
// lines the terminal renderer can style.
package narrative

import (
	"strings"
	"unicode/utf8"
)

// SpanKind classifies a piece of a line.
type SpanKind int

const (
	Plain SpanKind = iota
	Action
	Dialogue
)

func (k SpanKind) String() string {
	switch k {
	case Action:
		return "action"
	case Dialogue:
		return "dialogue"
	}
	return "plain"
}

// Span is one typed run of a line. Text is the content without its
// delimiters; Raw is the run as written.
type Span struct {
	Kind SpanKind
	Text string
	Raw  string
}

type delimiter struct {
	kind    SpanKind
	closers string
}

var openers = map[rune]delimiter{
	'（': {Action, "）)"},
	'(': {Action, "）)"},
	'*': {Action, "*"},
	'"': {Dialogue, "\"”＂"},
	'“': {Dialogue, "\"”＂"},
	'＂': {Dialogue, "\"”＂"},
}

const openerSet = "（(*\"“＂"

// Tokenize splits a line into plain, action and dialogue spans, scanning
// greedily left to right. An opener without a matching closer is treated as
// plain text. The scan is capped at one iteration per rune; whatever is left
// when the cap runs out becomes a single plain span.
func Tokenize(line string) []Span {
	rest := strings.TrimSpace(line)
	limit := utf8.RuneCountInString(rest) + 1
	var spans []Span
	for i := 0; rest != ""; i++ {
		if i >= limit {
			spans = append(spans, plain(rest))
			break
		}
		if sp, n, ok := delimited(rest); ok {
			spans = append(spans, sp)
			rest = strings.TrimSpace(rest[n:])
			continue
		}
		next := nextOpener(rest)
		if next < 0 {
			spans = append(spans, plain(rest))
			break
		}
		if p := strings.TrimSpace(rest[:next]); p != "" {
			spans = append(spans, plain(p))
		}
		rest = rest[next:]
	}
	return spans
}

func plain(s string) Span {
	s = strings.TrimSpace(s)
	return Span{Kind: Plain, Text: s, Raw: s}
}

// delimited matches an action or dialogue run at the start of s and returns
// it with the number of bytes consumed.
func delimited(s string) (Span, int, bool) {
	r, size := utf8.DecodeRuneInString(s)
	d, ok := openers[r]
	if !ok {
		return Span{}, 0, false
	}
	body := s[size:]
	end := strings.IndexAny(body, d.closers)
	if end <= 0 {
		return Span{}, 0, false
	}
	_, closeSize := utf8.DecodeRuneInString(body[end:])
	n := size + end + closeSize
	return Span{Kind: d.kind, Text: body[:end], Raw: s[:n]}, n, true
}

// nextOpener returns the byte offset of the first opener after the first rune
// of s, or -1.
func nextOpener(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	i := strings.IndexAny(s[size:], openerSet)
	if i < 0 {
		return -1
	}
	return size + i
}
