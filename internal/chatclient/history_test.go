package chatclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"storypals/internal/domain"
)

func TestHistoryLoaderInitial_NormalizesStoredMessages(t *testing.T) {
	backend := newFakeBackend()
	backend.history = []domain.ChatMessage{
		{Text: "Hi Luna", Sender: domain.SenderUser, Status: domain.StatusSent},
		{ID: "b1", Text: "Hello friend", Sender: domain.SenderBot, CharacterID: "luna", Status: domain.StatusSent},
		{ID: "u2", Text: "one more", Sender: domain.SenderUser, CharacterID: "luna", Status: domain.StatusSending},
	}
	loader := NewHistoryLoader(backend, "u1", luna, nil)

	msgs, warning, ok := loader.Initial(context.Background())
	if !ok || warning != "" {
		t.Fatalf("unexpected result ok=%v warning=%q", ok, warning)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected stored history only, got %d messages", len(msgs))
	}
	if msgs[0].ID == "" || msgs[0].CharacterID != "luna" {
		t.Fatalf("expected missing id and character filled in, got %+v", msgs[0])
	}
	if msgs[2].Status != domain.StatusFailed {
		t.Fatalf("expected stored sending message to load as failed, got %q", msgs[2].Status)
	}

	if _, _, ok := loader.Initial(context.Background()); ok {
		t.Fatalf("expected second activation to be ignored")
	}
	if backend.fetches() != 1 {
		t.Fatalf("expected a single fetch, got %d", backend.fetches())
	}
}

func TestHistoryLoaderInitial_GreetingCases(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("ART", -3*3600))

	cases := []struct {
		name        string
		userID      string
		historyErr  error
		wantWarning string
		wantFetches int
	}{
		{name: "anonymous", userID: "", wantFetches: 0},
		{name: "empty history", userID: "u1", wantFetches: 1},
		{name: "load error", userID: "u1", historyErr: errors.New("boom"), wantWarning: msgLoadFailed, wantFetches: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.historyErr = tc.historyErr
			loader := NewHistoryLoader(backend, tc.userID, luna, nil)
			loader.now = func() time.Time { return at }

			msgs, warning, ok := loader.Initial(context.Background())
			if !ok || warning != tc.wantWarning {
				t.Fatalf("unexpected result ok=%v warning=%q", ok, warning)
			}
			if len(msgs) != 1 || msgs[0].Sender != domain.SenderBot || msgs[0].Status != domain.StatusSent {
				t.Fatalf("expected a single greeting, got %+v", msgs)
			}
			if !msgs[0].Timestamp.Equal(at) || msgs[0].Timestamp.Location() != time.UTC {
				t.Fatalf("expected greeting stamped in UTC from the clock, got %v", msgs[0].Timestamp)
			}
			if backend.fetches() != tc.wantFetches {
				t.Fatalf("expected %d fetches, got %d", tc.wantFetches, backend.fetches())
			}
		})
	}
}
