package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelMock queues canned completions. When GenerateFunc is set it wins;
// otherwise Responses are served in order, repeating the last one once
// exhausted.
type ChatModelMock struct {
	GenerateFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)
	Responses    []string
	Err          error

	mu    sync.Mutex
	calls int
}

func (m *ChatModelMock) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, input)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return schema.AssistantMessage("{}", nil), nil
	}
	idx := call - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return schema.AssistantMessage(m.Responses[idx], nil), nil
}

func (m *ChatModelMock) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming is not supported by the mock")
}

func (m *ChatModelMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
