package llm

import (
	"context"
	"sync"
)

// MockClient responde sin red. Replies permite una respuesta distinta por
// modelo de personaje; si el modelo no esta, se usa Response.
type MockClient struct {
	Response string
	Replies  map[string]string
	Err      error

	mu         sync.Mutex
	calls      int
	LastModel  string
	LastPrompt string
}

func (m *MockClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.LastModel = model
	m.LastPrompt = prompt
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if reply, ok := m.Replies[model]; ok {
		return reply, nil
	}
	return m.Response, nil
}

// Calls devuelve cuantas veces se llamo a Generate.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
