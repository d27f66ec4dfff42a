package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storypals/internal/domain"
)

func TestAnalyticsServiceInteractions(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)
	repo := newMockChatRepo()
	repo.all = []domain.ChatMessage{
		{CharacterID: "luna", Sender: domain.SenderUser, Timestamp: now.Add(-26 * time.Hour)},
		{CharacterID: "luna", Sender: domain.SenderBot, Timestamp: now.Add(-26 * time.Hour)},
		{CharacterID: "luna", Sender: domain.SenderUser, Timestamp: now.Add(-time.Hour)},
		{CharacterID: "luna", Sender: domain.SenderUser, Status: domain.StatusFailed, Timestamp: now.Add(-30 * time.Minute)},
		{CharacterID: "dodo", Sender: domain.SenderUser, Timestamp: now.Add(-2 * time.Hour)},
		{CharacterID: "dodo", Sender: domain.SenderUser, Timestamp: now.AddDate(0, 0, -10)},
	}
	svc := NewAnalyticsService(repo)
	svc.now = func() time.Time { return now }

	report, err := svc.Interactions(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("interactions: %v", err)
	}
	if report.Days != 3 || report.TotalMessages != 4 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Daily) != 3 {
		t.Fatalf("expected 3 daily buckets, got %d", len(report.Daily))
	}
	if report.Daily[0].Day != "2024-03-18" || report.Daily[2].Day != "2024-03-20" {
		t.Fatalf("unexpected day labels: %+v", report.Daily)
	}
	if report.Daily[1].Messages != 2 || report.Daily[2].Messages != 2 {
		t.Fatalf("unexpected daily counts: %+v", report.Daily)
	}
	if len(report.ByCharacter) != 2 || report.ByCharacter[0].CharacterID != "luna" {
		t.Fatalf("expected luna first, got %+v", report.ByCharacter)
	}
	luna := report.ByCharacter[0]
	if luna.UserMessages != 2 || luna.BotMessages != 1 || !luna.LastActivity.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected luna stats: %+v", luna)
	}
}

func TestAnalyticsServiceInteractions_DefaultsAndNil(t *testing.T) {
	svc := NewAnalyticsService(newMockChatRepo())
	report, err := svc.Interactions(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("interactions: %v", err)
	}
	if report.Days != 7 || len(report.Daily) != 7 || len(report.ByCharacter) != 0 {
		t.Fatalf("unexpected empty report: %+v", report)
	}

	var nilSvc *AnalyticsService
	if _, err := nilSvc.Interactions(context.Background(), "u1", 7); !errors.Is(err, ErrAnalyticsServiceNotConfigured) {
		t.Fatalf("expected ErrAnalyticsServiceNotConfigured, got %v", err)
	}
}
