package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storypals/internal/chatclient"
	"storypals/internal/domain"
)

type scriptedBackend struct {
	replies chan string
	errs    chan error
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{replies: make(chan string, 4), errs: make(chan error, 4)}
}

func (b *scriptedBackend) SendMessage(ctx context.Context, _ chatclient.SendRequest) (string, error) {
	select {
	case r := <-b.replies:
		return r, nil
	case err := <-b.errs:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *scriptedBackend) ChatHistory(context.Context, string, string) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (b *scriptedBackend) SaveChatHistory(context.Context, string, string, []domain.ChatMessage) error {
	return nil
}

var leo = domain.Character{ID: "leo", Name: "Captain Leo", Title: "The Brave Explorer"}

func newTestModel(t *testing.T) (ChatModel, *chatclient.Controller, *scriptedBackend) {
	t.Helper()
	backend := newScriptedBackend()
	ctrl := chatclient.NewController(backend, leo, "u1")
	t.Cleanup(ctrl.Close)

	m := NewChatModel(ctrl)
	ctrl.Activate(context.Background())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(ChatModel), ctrl, backend
}

func update(t *testing.T, m ChatModel, msg tea.Msg) ChatModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(ChatModel)
}

func TestChatModel_ShowsGreeting(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(t, m, activatedMsg{})

	view := m.View()
	if !strings.Contains(view, "Captain Leo") {
		t.Fatalf("expected header with character name, got:\n%s", view)
	}
	if !strings.Contains(view, "amazing stories") {
		t.Fatalf("expected greeting in view, got:\n%s", view)
	}
}

func TestChatModel_EnterSendsAndClearsInput(t *testing.T) {
	m, ctrl, backend := newTestModel(t)

	m.input.SetValue("   ")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(ctrl.Messages()) != 1 {
		t.Fatalf("blank input must not send")
	}

	m.input.SetValue("Tell me about lions")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after send")
	}
	if !ctrl.Busy() || !strings.Contains(m.View(), "is thinking") {
		t.Fatalf("expected busy indicator")
	}

	m.input.SetValue("second")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Value() != "second" {
		t.Fatalf("expected text kept while a send is in flight")
	}

	backend.replies <- "Lions are brave and kind."
	ctrl.Wait()
	m = update(t, m, changedMsg{})

	msgs := ctrl.Messages()
	if len(msgs) != 3 || msgs[1].Status != domain.StatusSent || msgs[2].Sender != domain.SenderBot {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if m.lastID != msgs[2].ID {
		t.Fatalf("expected view to follow the newest message")
	}
	if !strings.Contains(m.View(), "brave and kind") {
		t.Fatalf("expected bot reply in view, got:\n%s", m.View())
	}
}

func TestChatModel_RetryAndDismiss(t *testing.T) {
	m, ctrl, backend := newTestModel(t)

	m.input.SetValue("hello")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	backend.errs <- &chatclient.Error{Kind: chatclient.KindNetwork, Err: errors.New("dial tcp: refused")}
	ctrl.Wait()
	m = update(t, m, changedMsg{})

	if ctrl.Error() == "" || !strings.Contains(m.View(), "Unable to connect") {
		t.Fatalf("expected network banner, got:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "ctrl+r to retry") {
		t.Fatalf("expected failed marker")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if ctrl.Error() != "" {
		t.Fatalf("expected esc to dismiss the banner")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if last, _ := ctrl.Last(); last.Status != domain.StatusSending {
		t.Fatalf("expected retried message to be sending, got %+v", last)
	}
	backend.replies <- "Hello again!"
	ctrl.Wait()
	_ = update(t, m, changedMsg{})

	if len(ctrl.Messages()) != 3 {
		t.Fatalf("expected greeting, retried message and reply, got %d", len(ctrl.Messages()))
	}
}

func TestChatModel_QuitClosesController(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m.input.SetValue("are you there?")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	done := make(chan struct{})
	go func() {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil || next.(ChatModel).View() != "" {
			t.Errorf("expected quit command and empty view")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("quit blocked on the in-flight send")
	}
	if err := ctrl.Send("late"); !errors.Is(err, chatclient.ErrClosed) {
		t.Fatalf("expected controller closed, got %v", err)
	}
}
