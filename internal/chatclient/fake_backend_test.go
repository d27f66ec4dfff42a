package chatclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"storypals/internal/domain"
)

type sendResult struct {
	reply string
	err   error
}

type sendCall struct {
	req  SendRequest
	ctx  context.Context
	resp chan sendResult
}

func (c *sendCall) resolve(reply string, err error) {
	c.resp <- sendResult{reply: reply, err: err}
}

// fakeBackend bloquea cada SendMessage hasta que el test lo resuelve.
// Con ignoreCtx la llamada no observa la cancelacion, como un request que
// ya salio y termina igual. Con historyGate, ChatHistory espera a que se cierre.
type fakeBackend struct {
	calls       chan *sendCall
	ignoreCtx   bool
	historyGate chan struct{}

	mu           sync.Mutex
	history      []domain.ChatMessage
	historyErr   error
	historyCalls int
	saved        [][]domain.ChatMessage
	saveErr      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(chan *sendCall, 16)}
}

func (f *fakeBackend) SendMessage(ctx context.Context, req SendRequest) (string, error) {
	call := &sendCall{req: req, ctx: ctx, resp: make(chan sendResult, 1)}
	f.calls <- call
	if f.ignoreCtx {
		r := <-call.resp
		return r.reply, r.err
	}
	select {
	case r := <-call.resp:
		return r.reply, r.err
	case <-ctx.Done():
		return "", &Error{Kind: KindCanceled, Err: ctx.Err()}
	}
}

func (f *fakeBackend) ChatHistory(ctx context.Context, _, _ string) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	f.historyCalls++
	f.mu.Unlock()
	if f.historyGate != nil {
		select {
		case <-f.historyGate:
		case <-ctx.Done():
			return nil, &Error{Kind: KindCanceled, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]domain.ChatMessage, len(f.history))
	copy(out, f.history)
	return out, ctx.Err()
}

func (f *fakeBackend) SaveChatHistory(_ context.Context, _, _ string, messages []domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, messages)
	return f.saveErr
}

func (f *fakeBackend) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.historyCalls
}

func (f *fakeBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeBackend) lastSaved() []domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

func (f *fakeBackend) next(t *testing.T) *sendCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for SendMessage")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
