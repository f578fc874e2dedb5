package markers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/narrative-engine/internal/models"
)

func defaultVocab() Vocabulary {
	return VocabularyFor(models.DefaultWorld())
}

func TestExtractChillAndOptions(t *testing.T) {
	text := "你感到一阵寒意。【勇气-5】【行动选项】1. 前进 2. 后退"
	b := Extract(text, defaultVocab())

	require.Len(t, b.StatDeltas, 1)
	assert.Equal(t, StatDelta{Scope: ScopePlayer, Stat: "勇气", Name: "勇气", Delta: -5}, b.StatDeltas[0])
	assert.Equal(t, []string{"前进", "后退"}, b.ActionOptions)
	assert.Equal(t, "你感到一阵寒意。", Strip(text))
}

func TestExtractStatPairs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []StatDelta
	}{
		{
			name: "alias",
			text: "【HP-10】",
			want: []StatDelta{{Scope: ScopePlayer, Stat: "生命", Name: "HP", Delta: -10}},
		},
		{
			name: "comma joined",
			text: "【智慧+3，勇气值-2】",
			want: []StatDelta{
				{Scope: ScopePlayer, Stat: "智慧", Name: "智慧", Delta: 3},
				{Scope: ScopePlayer, Stat: "勇气", Name: "勇气值", Delta: -2},
			},
		},
		{
			name: "ascii comma",
			text: "【信任+5, 默契+2】",
			want: []StatDelta{
				{Scope: ScopeCharacter, Stat: "信任", Name: "信任", Delta: 5},
				{Scope: ScopeCharacter, Stat: "默契", Name: "默契", Delta: 2},
			},
		},
		{
			name: "named character",
			text: "【莉娜信任+5】【米洛的默契度-1】",
			want: []StatDelta{
				{Scope: ScopeCharacter, CharacterID: "lina", Stat: "信任", Name: "莉娜信任", Delta: 5},
				{Scope: ScopeCharacter, CharacterID: "milo", Stat: "默契", Name: "米洛的默契度", Delta: -1},
			},
		},
		{
			name: "unresolved dropped",
			text: "【魔力+5，勇气+1】【好感+3】",
			want: []StatDelta{{Scope: ScopePlayer, Stat: "勇气", Name: "勇气", Delta: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text, defaultVocab()).StatDeltas)
		})
	}
}

func TestExtractKeywordMarkers(t *testing.T) {
	text := "你推开门。【目标更新:集结同伴 +10%】【关键事件:初遇】你在广场遇见了一位剑士。" +
		"【重大事件:裂缝扩张】天空裂开了。【解锁角色:凯尔】【解锁角色:路人】【获得物品:符文碎片·闪着微光的石片】"
	b := Extract(text, defaultVocab())

	assert.Equal(t, []GoalUpdate{{Title: "集结同伴", DeltaPercent: 10}}, b.GoalUpdates)
	assert.Equal(t, []Event{
		{Title: "初遇", Description: "你在广场遇见了一位剑士。"},
		{Title: "裂缝扩张", Description: "天空裂开了。", Major: true},
	}, b.Events)
	assert.Equal(t, []CharacterUnlock{{Name: "凯尔", CharacterID: "kael"}}, b.Unlocks)
	assert.Equal(t, []ItemGrant{{Name: "符文碎片", Icon: DefaultItemIcon, Description: "闪着微光的石片"}}, b.Items)
	assert.Empty(t, b.StatDeltas)
	assert.Empty(t, b.ActionOptions)
	assert.Equal(t, "你推开门。", Strip(text))
}

func TestExtractFullWidthColon(t *testing.T) {
	b := Extract("【目标更新：守护小镇 +5%】【解锁角色：雪织】", defaultVocab())
	assert.Equal(t, []GoalUpdate{{Title: "守护小镇", DeltaPercent: 5}}, b.GoalUpdates)
	assert.Equal(t, []CharacterUnlock{{Name: "雪织", CharacterID: "yuki"}}, b.Unlocks)
}

func TestExtractActionsLastWins(t *testing.T) {
	text := "【行动选项】1. 观察 2. 离开\n之后。【行动选项】1、攀爬 2、呼喊 3、等待"
	b := Extract(text, defaultVocab())
	assert.Equal(t, []string{"攀爬", "呼喊", "等待"}, b.ActionOptions)
}

func TestExtractNoMarkers(t *testing.T) {
	b := Extract("【莉娜】（轻声）\"小心。\"", defaultVocab())
	assert.True(t, b.Empty())
	assert.NotNil(t, b.ActionOptions)
	assert.Empty(t, b.Markers())
}

func TestExtractStatShapedEventTitle(t *testing.T) {
	// Brackets carrying a keyword prefix are never read as stat deltas, even
	// when their payload ends in something stat-shaped.
	tests := []struct {
		name string
		text string
		want Event
	}{
		{
			name: "bare",
			text: "【重大事件:勇气+5】你鼓起勇气。",
			want: Event{Title: "勇气+5", Description: "你鼓起勇气。", Major: true},
		},
		{
			name: "space after colon",
			text: "【重大事件: 勇气+5】你鼓起勇气。",
			want: Event{Title: "勇气+5", Description: "你鼓起勇气。", Major: true},
		},
		{
			name: "comma in title",
			text: "【关键事件:决战，勇气+5】众人拔剑。",
			want: Event{Title: "决战，勇气+5", Description: "众人拔剑。"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Extract(tt.text, defaultVocab())
			assert.Empty(t, b.StatDeltas)
			assert.Equal(t, []Event{tt.want}, b.Events)
			assert.Equal(t, "", Strip(tt.text))
		})
	}
}

func TestExtractSaturatesDeltas(t *testing.T) {
	tests := []struct {
		name string
		text string
		stat int
		goal int
	}{
		{name: "max int64", text: "【勇气+9223372036854775807】【目标更新:集结同伴 +9223372036854775807%】", stat: MaxDelta, goal: MaxDelta},
		{name: "past int64", text: "【勇气+99999999999999999999】【目标更新:集结同伴 +99999999999999999999%】", stat: MaxDelta, goal: MaxDelta},
		{name: "negative past int64", text: "【勇气-99999999999999999999】【目标更新:集结同伴 +250%】", stat: -MaxDelta, goal: MaxDelta},
		{name: "in range", text: "【勇气-7】【目标更新:集结同伴 +15%】", stat: -7, goal: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Extract(tt.text, defaultVocab())
			require.Len(t, b.StatDeltas, 1)
			assert.Equal(t, tt.stat, b.StatDeltas[0].Delta)
			require.Len(t, b.GoalUpdates, 1)
			assert.Equal(t, tt.goal, b.GoalUpdates[0].DeltaPercent)
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "【勇气+5，信任-3】【目标更新:揭开裂缝秘密 +20%】【关键事件:a】b【获得物品:x·y】【行动选项】1. 甲 2. 乙"
	first := Extract(text, defaultVocab())
	for range 10 {
		assert.Equal(t, first, Extract(text, defaultVocab()))
	}
}

func TestBatchMarkersOrder(t *testing.T) {
	b := Extract("【行动选项】1. 走【获得物品:x·y】【解锁角色:凯尔】【关键事件:e】d【目标更新:g +1%】【勇气+1】", defaultVocab())
	var kinds []Kind
	for _, m := range b.Markers() {
		kinds = append(kinds, m.Kind())
	}
	assert.Equal(t, []Kind{KindStatDelta, KindGoalUpdate, KindEvent, KindCharacterUnlock, KindItemGrant, KindActionOptions}, kinds)
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  你好。  ", "你好。"},
		{"speaker kept", "【莉娜】\"走吧。\"【信任+2】", "【莉娜】\"走吧。\""},
		{"unresolved stat shape", "风停了。【魔力+5】", "风停了。"},
		{"unknown bracket kept", "他写下【秘密】两个字。", "他写下【秘密】两个字。"},
		{"malformed keyword", "开始【目标更新:没有百分比】结束", "开始结束"},
		{"unclosed keyword", "开始【行动选项", "开始"},
		{"whitespace", "第一行  【勇气+1】  \n\n\n\n  第二行", "第一行\n\n第二行"},
		{"spliced", "【行动【勇气+1】选项】1. 走", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestStripProperties(t *testing.T) {
	inputs := []string{
		"你感到一阵寒意。【勇气-5】【行动选项】1. 前进 2. 后退",
		"【重大事件:裂缝】【关键事件:x】【解锁角色:凯尔",
		"【【【行动选项】】】",
		"【目标更新:【目标更新:a +1%】 +2%】",
		"（看了你一眼）\"你说什么？\"",
		"",
		"【莉娜】【HP+1，智慧-2】\n\t \n【获得物品:a·b】尾",
	}
	for _, in := range inputs {
		once := Strip(in)
		assert.Equal(t, once, Strip(once), "idempotent for %q", in)
		assert.LessOrEqual(t, len(once), len(in))
		assert.False(t, HasReservedPrefix(once), "reserved prefix left in %q", once)
		assert.False(t, strings.HasPrefix(once, " "))
	}
}
