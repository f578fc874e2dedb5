package chat

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/narrative-engine/internal/models"
)

func TestGeminiContents(t *testing.T) {
	system, contents := geminiContents([]Message{
		{Role: models.RoleSystem, Content: "规则"},
		{Role: models.RoleSystem, Content: "[历史摘要] 之前"},
		{Role: models.RoleUser, Content: "看看四周"},
		{Role: models.RoleAssistant, Content: "风吹过。"},
		{Role: models.RoleSystem, Content: "你来到了森林"},
		{Role: models.RoleUser, Content: "前进"},
	})

	assert.Equal(t, "规则\n\n[历史摘要] 之前", system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, []genai.Part{genai.Text("[系统] 你来到了森林"), genai.Text("前进")}, contents[2].Parts)
}
