package markers

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// rule is one entry of the grammar table. extract reports whether the match
// was claimed; a claimed bracket is not offered to lower-priority rules.
type rule struct {
	kind    Kind
	pattern *regexp.Regexp
	extract func(r *resolver, text string, m []int, b *Batch) bool
}

var (
	statPattern    = regexp.MustCompile(`【([^】]+?)([+-]\d+)(?:[，,]\s*([^】]+?)([+-]\d+))*】`)
	statPair       = regexp.MustCompile(`([^\s，,+\-【】]+)\s*([+-]\d+)`)
	goalPattern    = regexp.MustCompile(`【目标更新[:：]([^】]+?)\s*\+(\d+)%】`)
	eventPattern   = regexp.MustCompile(`【(关键事件|重大事件)[:：]([^】]+?)】([^【]*)`)
	unlockPattern  = regexp.MustCompile(`【解锁角色[:：]([^】]+?)】`)
	itemPattern    = regexp.MustCompile(`【获得物品[:：]([^】·]+?)\s*·\s*([^】]+?)】`)
	actionsPattern = regexp.MustCompile(`【行动选项】([^【]*)`)
	optionSplit    = regexp.MustCompile(`\d+[.、]\s*`)

	// reservedPattern catches keyword brackets too malformed for their rule.
	reservedPattern = regexp.MustCompile(`【(?:目标更新|关键事件|重大事件|解锁角色|获得物品|行动选项)[^】\n]*】?`)
)

// reservedPrefixes never survive stripping.
var reservedPrefixes = []string{"【目标更新", "【关键事件", "【重大事件", "【解锁角色", "【获得物品", "【行动选项"}

// grammar lists the rules in priority order.
var grammar = []rule{
	{kind: KindStatDelta, pattern: statPattern, extract: extractStats},
	{kind: KindGoalUpdate, pattern: goalPattern, extract: extractGoal},
	{kind: KindEvent, pattern: eventPattern, extract: extractEvent},
	{kind: KindCharacterUnlock, pattern: unlockPattern, extract: extractUnlock},
	{kind: KindItemGrant, pattern: itemPattern, extract: extractItem},
	{kind: KindActionOptions, pattern: actionsPattern, extract: extractActions},
}

func group(text string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

func extractStats(r *resolver, text string, m []int, b *Batch) bool {
	payload := text[m[0]:m[1]]
	if HasReservedPrefix(payload) {
		return false
	}
	claimed := false
	for _, pair := range statPair.FindAllStringSubmatch(payload, -1) {
		d, ok := r.stat(pair[1])
		if !ok {
			continue
		}
		d.Delta = parseDelta(pair[2])
		b.StatDeltas = append(b.StatDeltas, d)
		claimed = true
	}
	return claimed
}

func extractGoal(_ *resolver, text string, m []int, b *Batch) bool {
	b.GoalUpdates = append(b.GoalUpdates, GoalUpdate{
		Title:        strings.TrimSpace(group(text, m, 1)),
		DeltaPercent: parseDelta(group(text, m, 2)),
	})
	return true
}

// MaxDelta bounds every extracted delta. Stats and goal progress live in
// [0,100], so a larger step changes nothing.
const MaxDelta = 100

// parseDelta reads a signed decimal, saturating to ±MaxDelta. Digits too
// long for an int64 saturate the same way.
func parseDelta(s string) int {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if strings.HasPrefix(s, "-") {
			return -MaxDelta
		}
		return MaxDelta
	}
	return int(min(max(v, -MaxDelta), MaxDelta))
}

func extractEvent(_ *resolver, text string, m []int, b *Batch) bool {
	b.Events = append(b.Events, Event{
		Title:       strings.TrimSpace(group(text, m, 2)),
		Description: strings.TrimSpace(group(text, m, 3)),
		Major:       group(text, m, 1) == "重大事件",
	})
	return true
}

func extractUnlock(r *resolver, text string, m []int, b *Batch) bool {
	name := strings.TrimSpace(group(text, m, 1))
	id, ok := r.characters[name]
	if !ok {
		return false
	}
	b.Unlocks = append(b.Unlocks, CharacterUnlock{Name: name, CharacterID: id})
	return true
}

func extractItem(_ *resolver, text string, m []int, b *Batch) bool {
	b.Items = append(b.Items, ItemGrant{
		Name:        strings.TrimSpace(group(text, m, 1)),
		Icon:        DefaultItemIcon,
		Description: strings.TrimSpace(group(text, m, 2)),
	})
	return true
}

func extractActions(_ *resolver, text string, m []int, b *Batch) bool {
	b.ActionOptions = splitOptions(group(text, m, 1))
	return true
}

func splitOptions(body string) []string {
	opts := []string{}
	for _, frag := range optionSplit.Split(strings.TrimSpace(body), -1) {
		if frag = strings.TrimSpace(frag); frag != "" {
			opts = append(opts, frag)
		}
	}
	return opts
}

// resolver holds the lookup tables built from a Vocabulary.
type resolver struct {
	playerStats    map[string]string // name or alias -> canonical
	characterStats map[string]string
	characters     map[string]string // display name -> id
	names          []string          // display names, longest first
}

func newResolver(v Vocabulary) *resolver {
	r := &resolver{
		playerStats:    make(map[string]string),
		characterStats: make(map[string]string),
		characters:     make(map[string]string, len(v.Characters)),
	}
	for _, s := range v.PlayerStats {
		r.playerStats[s.Name] = s.Name
		for _, a := range s.Aliases {
			r.playerStats[a] = s.Name
		}
	}
	for _, s := range v.CharacterStats {
		r.characterStats[s.Name] = s.Name
		for _, a := range s.Aliases {
			r.characterStats[a] = s.Name
		}
	}
	for _, c := range v.Characters {
		if _, dup := r.characters[c.Name]; dup {
			continue
		}
		r.characters[c.Name] = c.ID
		r.names = append(r.names, c.Name)
	}
	// longest first, so a name that prefixes another never shadows it
	slices.SortStableFunc(r.names, func(a, b string) int { return len(b) - len(a) })
	return r
}

// stat resolves the name part of a stat pair. Player stats win over
// relationship stats; a relationship stat may be prefixed by a character name.
func (r *resolver) stat(name string) (StatDelta, bool) {
	if canon, ok := r.playerStats[name]; ok {
		return StatDelta{Scope: ScopePlayer, Stat: canon, Name: name}, true
	}
	if canon, ok := r.characterStats[name]; ok {
		return StatDelta{Scope: ScopeCharacter, Stat: canon, Name: name}, true
	}
	for _, cn := range r.names {
		rest, ok := strings.CutPrefix(name, cn)
		if !ok || rest == "" {
			continue
		}
		rest = strings.TrimPrefix(rest, "的")
		if canon, ok := r.characterStats[rest]; ok {
			return StatDelta{Scope: ScopeCharacter, CharacterID: r.characters[cn], Stat: canon, Name: name}, true
		}
	}
	return StatDelta{}, false
}
