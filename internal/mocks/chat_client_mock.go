package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tatianab/narrative-engine/internal/chat"
)

// MockChatClient is a mock type for the chat.Client type
type MockChatClient struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, msgs
func (_m *MockChatClient) Complete(ctx context.Context, msgs []chat.Message) (string, error) {
	ret := _m.Called(ctx, msgs)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, []chat.Message) string); ok {
		r0 = rf(ctx, msgs)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}
	return r0, ret.Error(1)
}

// Stream provides a mock function with given fields: ctx, msgs, onChunk.
// The first return value is the list of chunks to deliver before returning
// the error in the second.
func (_m *MockChatClient) Stream(ctx context.Context, msgs []chat.Message, onChunk func(string)) error {
	ret := _m.Called(ctx, msgs, onChunk)

	if chunks, ok := ret.Get(0).([]string); ok {
		for _, c := range chunks {
			onChunk(c)
		}
	}
	return ret.Error(1)
}

// NewMockChatClient creates a new instance of MockChatClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockChatClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChatClient {
	m := &MockChatClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ chat.Client = (*MockChatClient)(nil)
