package markers

import "strings"

// Extract scans one completed turn and returns every marker it carries.
//
// Rules run in priority order over the whole text. A bracket claimed by a
// higher-priority rule is skipped by the rest, so the same bracket is never
// extracted as two kinds. Unresolvable names are dropped. Extract has no side
// effects and is deterministic.
func Extract(text string, vocab Vocabulary) Batch {
	var b Batch
	b.ActionOptions = []string{}
	r := newResolver(vocab)
	claimed := make(map[int]bool)
	for _, rl := range grammar {
		for _, m := range rl.pattern.FindAllStringSubmatchIndex(text, -1) {
			if claimed[m[0]] {
				continue
			}
			if rl.extract(r, text, m, &b) {
				claimed[m[0]] = true
			}
		}
	}
	return b
}

// StatLabels returns the payload of every stat-shaped bracket in text, in
// order, whether or not its names resolve. Renderers show these as a summary
// line under the narrative.
func StatLabels(text string) []string {
	var labels []string
	for _, m := range statPattern.FindAllStringIndex(text, -1) {
		raw := text[m[0]:m[1]]
		if HasReservedPrefix(raw) {
			continue
		}
		labels = append(labels, strings.TrimSuffix(strings.TrimPrefix(raw, "【"), "】"))
	}
	return labels
}
