package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/mocks"
	"github.com/tatianab/narrative-engine/internal/models"
)

func TestCollect(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	msgs := []chat.Message{{Role: models.RoleUser, Content: "你好"}}
	client.On("Stream", mock.Anything, msgs, mock.Anything).
		Return([]string{"你感到", "一阵寒意。", "【勇气-5】"}, nil)

	var seen []string
	got, err := chat.Collect(context.Background(), client, msgs, func(c string) { seen = append(seen, c) })
	require.NoError(t, err)
	assert.Equal(t, "你感到一阵寒意。【勇气-5】", got)
	assert.Len(t, seen, 3)
}

func TestCollectError(t *testing.T) {
	client := mocks.NewMockChatClient(t)
	boom := errors.New("connection reset")
	client.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return([]string{"半句"}, boom)

	got, err := chat.Collect(context.Background(), client, nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := chat.New(context.Background(), chat.Settings{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewOpenAI(t *testing.T) {
	c, err := chat.New(context.Background(), chat.Settings{Provider: chat.ProviderOpenAI, OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &chat.OpenAIClient{}, c)
}
