package mocks

import (
	"context"
	"sync"

	"deckforge/internal/events"
)

type RetrieverMock struct {
	RetrieveContextFunc func(ctx context.Context, userID uint, query string, k int) (string, error)

	mu      sync.Mutex
	queries []string
}

func (m *RetrieverMock) RetrieveContext(ctx context.Context, userID uint, query string, k int) (string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.RetrieveContextFunc != nil {
		return m.RetrieveContextFunc(ctx, userID, query, k)
	}
	return "", nil
}

func (m *RetrieverMock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// EmitterMock records every emitted event.
type EmitterMock struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *EmitterMock) Emit(_ context.Context, evt events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

func (m *EmitterMock) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.events))
	copy(out, m.events)
	return out
}
