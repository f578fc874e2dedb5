package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/mocks"
	"github.com/tatianab/narrative-engine/internal/models"
)

// worldReply wraps a valid world in the chatter a model tends to add.
func worldReply(t *testing.T, title string) string {
	t.Helper()
	w := models.DefaultWorld()
	w.Title = title
	data, err := json.MarshalIndent(w, "", "\t")
	require.NoError(t, err)
	return "好的，这是为你生成的世界：\n```json\n" + string(data) + "\n```\n祝游戏愉快！"
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "前言\n```json\n{\"a\": 1}\n```\n后记", `{"a": 1}`},
		{"fenced without language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"braces", "这里是结果 {\"a\": {\"b\": 2}} 完毕", `{"a": {"b": 2}}`},
		{"bare", "  {\"a\": 1}  ", `{"a": 1}`},
		{"nothing", "  抱歉  ", "抱歉"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractObject(tt.in))
		})
	}
}

func TestGenerateWorldRetries(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []chat.Message) bool {
		return len(msgs) == 2 && msgs[0].Role == models.RoleSystem && msgs[1].Content == "海上孤岛"
	})).Return("我不太明白。", nil).Once()
	client.On("Complete", mock.Anything, mock.Anything).Return(worldReply(t, "孤岛"), nil).Once()

	e := NewEngine(client, zap.NewNop(), nil)
	world, err := e.GenerateWorld(context.Background(), "海上孤岛")
	require.NoError(t, err)
	assert.Equal(t, "孤岛", world.Title)
	assert.Len(t, world.Characters, 4)
	assert.Empty(t, world.ScriptContent)
}

func TestGenerateWorldGivesUp(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("unavailable")).Twice()

	_, err := NewEngine(client, nil, nil).GenerateWorld(context.Background(), "海上孤岛")
	assert.ErrorContains(t, err, "unavailable")
}

func TestGenerateWorldRejectsIncompleteWorld(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"title": "半成品", "characters": [{"id": "a", "name": "甲"}]}`, nil).Twice()

	_, err := NewEngine(client, nil, nil).GenerateWorld(context.Background(), "海上孤岛")
	assert.ErrorIs(t, err, models.ErrInvalidWorld)
}

func TestGenerateWorldLongHintBecomesScript(t *testing.T) {
	hint := strings.Repeat("龙", scriptHintRunes)
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.Anything).Return(worldReply(t, "龙之国"), nil).Once()

	world, err := NewEngine(client, nil, nil).GenerateWorld(context.Background(), hint)
	require.NoError(t, err)
	assert.Equal(t, hint, world.ScriptContent)
}

func TestSummarizeHistoryClipsMessages(t *testing.T) {
	long := strings.Repeat("长", summaryClip+50)
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []chat.Message) bool {
		p := msgs[0].Content
		return strings.Contains(p, "[user]: "+strings.Repeat("长", summaryClip)+"\n") &&
			strings.Contains(p, "[assistant]: 短")
	})).Return("摘要", nil).Once()

	got, err := NewEngine(client, nil, nil).SummarizeHistory(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: long},
		{Role: models.RoleAssistant, Content: "短"},
	})
	require.NoError(t, err)
	assert.Equal(t, "摘要", got)
}

func TestSummarizeHistoryEmpty(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	client.On("Complete", mock.Anything, mock.Anything).Return("   ", nil).Once()

	_, err := NewEngine(client, nil, nil).SummarizeHistory(context.Background(), nil)
	assert.ErrorIs(t, err, chat.ErrEmptyResponse)
}

func TestBuildSystemPrompt(t *testing.T) {
	world := models.DefaultWorld()
	s := models.NewGameState(world)
	s.Round = 1
	s.Character = "lina"
	s.Goals[0].Progress = 30
	s.Goals[1].Completed = true

	prompt, err := BuildSystemPrompt(s, world)
	require.NoError(t, err)
	assert.Contains(t, prompt, "你是《冒险旅途》的叙述者")
	assert.Contains(t, prompt, "生命: 80 · 智慧: 50 · 勇气: 40")
	assert.Contains(t, prompt, "## 当前互动角色\n- 莉娜（边境剑士）")
	assert.Contains(t, prompt, "当前关系：信任30 默契10")
	assert.Contains(t, prompt, "第一幕")
	assert.Contains(t, prompt, "30% 揭开裂缝秘密")
	assert.Contains(t, prompt, "✅ 集结同伴")
	assert.NotContains(t, prompt, "凯尔(", "locked characters are hidden")

	s.Round = 2
	s.Character = ""
	prompt, err = BuildSystemPrompt(s, world)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "第一幕")
	assert.NotContains(t, prompt, "当前互动角色")
}

func TestBuildMessages(t *testing.T) {
	world := models.DefaultWorld()
	msgs, err := BuildMessages(NarrateRequest{
		State:    models.NewGameState(world),
		World:    world,
		Summary:  "旧事",
		Recent:   []models.Message{{Role: models.RoleAssistant, Content: "风起。"}},
		UserText: "看看四周",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, chat.Message{Role: models.RoleSystem, Content: "[历史摘要] 旧事"}, msgs[1])
	assert.Equal(t, chat.Message{Role: models.RoleAssistant, Content: "风起。"}, msgs[2])
	assert.Equal(t, chat.Message{Role: models.RoleUser, Content: "看看四周"}, msgs[3])
}
