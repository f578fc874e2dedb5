package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tatianab/narrative-engine/internal/models"
	"github.com/tatianab/narrative-engine/internal/narrative"
)

func TestSceneID(t *testing.T) {
	world := models.DefaultWorld()

	id, ok := sceneID(world, "古老森林")
	assert.True(t, ok)
	assert.Equal(t, "ancient-forest", id)

	id, ok = sceneID(world, "rift-edge")
	assert.True(t, ok)
	assert.Equal(t, "rift-edge", id)

	_, ok = sceneID(world, "")
	assert.False(t, ok)
}

func TestCharacterID(t *testing.T) {
	world := models.DefaultWorld()

	id, ok := characterID(world, "莉娜")
	assert.True(t, ok)
	assert.Equal(t, "lina", id)

	id, ok = characterID(world, "")
	assert.True(t, ok, "empty name ends the conversation")
	assert.Empty(t, id)

	_, ok = characterID(world, "路人")
	assert.False(t, ok)
}

func TestCharacterListHidesLocked(t *testing.T) {
	world := models.DefaultWorld()
	got := characterList(world, models.NewGameState(world))
	assert.Contains(t, got, "莉娜")
	assert.NotContains(t, got, "凯尔")
}

func TestRenderParagraphDropsMarkers(t *testing.T) {
	world := models.DefaultWorld()
	p := narrative.ParseParagraph("雨落下来。【勇气+2】\n【莉娜】（拔剑）\"小心！\"\n【行动选项】1. 躲 2. 跑", narrative.PaletteFor(world))

	out := renderParagraph(p, 80)
	assert.Contains(t, out, "雨落下来。")
	assert.Contains(t, out, "小心！")
	assert.Contains(t, out, "勇气+2")
	assert.NotContains(t, out, "行动选项")
}
