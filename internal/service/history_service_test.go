package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storypals/internal/domain"
)

type mockChatRepo struct {
	pairs      map[string][]domain.ChatMessage
	all        []domain.ChatMessage
	lastSince  time.Time
	replaceErr error
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{pairs: make(map[string][]domain.ChatMessage)}
}

func (m *mockChatRepo) ListByPair(_ context.Context, userID, characterID string) ([]domain.ChatMessage, error) {
	out := m.pairs[userID+"|"+characterID]
	if out == nil {
		return []domain.ChatMessage{}, nil
	}
	return out, nil
}

func (m *mockChatRepo) ReplacePair(_ context.Context, userID, characterID string, messages []domain.ChatMessage) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.pairs[userID+"|"+characterID] = messages
	return nil
}

func (m *mockChatRepo) ListByUserSince(_ context.Context, _ string, since time.Time) ([]domain.ChatMessage, error) {
	m.lastSince = since
	out := make([]domain.ChatMessage, 0, len(m.all))
	for _, msg := range m.all {
		if !msg.Timestamp.Before(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func TestHistoryServiceSave_Normalizes(t *testing.T) {
	repo := newMockChatRepo()
	svc := NewHistoryService(repo)

	err := svc.Save(context.Background(), " u1 ", " luna ", []domain.ChatMessage{
		{ID: "not-a-uuid", Text: " hello ", Sender: domain.SenderUser, Status: domain.StatusSent},
		{Text: "   ", Sender: domain.SenderUser},
		{ID: "3f0f8f8e-8c1b-4b8a-9d6c-4f5d0f6a1b2c", Text: "hi there", Sender: domain.SenderBot},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	saved := repo.pairs["u1|luna"]
	if len(saved) != 2 {
		t.Fatalf("expected blank message dropped, got %d messages", len(saved))
	}
	if saved[0].ID == "not-a-uuid" || saved[0].ID == "" {
		t.Fatalf("expected regenerated id, got %q", saved[0].ID)
	}
	if saved[0].Text != "hello" || saved[0].Timestamp.IsZero() || saved[0].CharacterID != "luna" {
		t.Fatalf("unexpected normalized message %+v", saved[0])
	}
	if saved[1].ID != "3f0f8f8e-8c1b-4b8a-9d6c-4f5d0f6a1b2c" || saved[1].Status != domain.StatusSent {
		t.Fatalf("expected bot message kept with sent status, got %+v", saved[1])
	}
}

func TestHistoryServiceSave_SendingUserMessageStoredAsFailed(t *testing.T) {
	repo := newMockChatRepo()
	svc := NewHistoryService(repo)

	err := svc.Save(context.Background(), "u1", "luna", []domain.ChatMessage{
		{Text: "first", Sender: domain.SenderUser, Status: domain.StatusSent},
		{Text: "second", Sender: domain.SenderUser, Status: domain.StatusSending},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	saved := repo.pairs["u1|luna"]
	if saved[0].Status != domain.StatusSent || saved[1].Status != domain.StatusFailed {
		t.Fatalf("expected sent then failed, got %q and %q", saved[0].Status, saved[1].Status)
	}
}

func TestHistoryServiceSave_Validation(t *testing.T) {
	svc := NewHistoryService(newMockChatRepo())
	if err := svc.Save(context.Background(), "", "luna", nil); !errors.Is(err, ErrHistoryInvalidInput) {
		t.Fatalf("expected ErrHistoryInvalidInput for missing user, got %v", err)
	}
	err := svc.Save(context.Background(), "u1", "luna", []domain.ChatMessage{{Text: "x", Sender: "narrator"}})
	if !errors.Is(err, ErrHistoryInvalidInput) {
		t.Fatalf("expected ErrHistoryInvalidInput for unknown sender, got %v", err)
	}
}

func TestHistoryServiceGet(t *testing.T) {
	repo := newMockChatRepo()
	repo.pairs["u1|luna"] = []domain.ChatMessage{{ID: "m1"}, {ID: "m2"}}
	svc := NewHistoryService(repo)

	out, err := svc.Get(context.Background(), "u1", "luna")
	if err != nil || len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d (%v)", len(out), err)
	}
	out, err = svc.Get(context.Background(), " ", "luna")
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil list, got %+v (%v)", out, err)
	}
}

func TestHistoryServiceSearch(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	repo := newMockChatRepo()
	repo.all = []domain.ChatMessage{
		{ID: "old", CharacterID: "luna", Text: "stars long ago", Timestamp: now.AddDate(0, 0, -40)},
		{ID: "a", CharacterID: "luna", Text: "Tell me about STARS", Timestamp: now.Add(-time.Hour)},
		{ID: "b", CharacterID: "dodo", Text: "owls and stars", Timestamp: now.Add(-time.Hour)},
		{ID: "c", CharacterID: "luna", Text: "planets", Timestamp: now.Add(-time.Hour)},
	}
	svc := NewHistoryService(repo)
	svc.now = func() time.Time { return now }

	out, err := svc.Search(context.Background(), "u1", HistoryFilter{CharacterID: "Luna", Search: "stars"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("expected only message a, got %+v", out)
	}
	if !repo.lastSince.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("expected default 30 day window, got %v", repo.lastSince)
	}
}
