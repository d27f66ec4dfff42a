package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"storypals/internal/domain"
	"storypals/internal/repository"
)

var ErrAnalyticsServiceNotConfigured = errors.New("analytics service not configured")

const maxAnalyticsDays = 365

// AnalyticsService agrega la actividad de chat de un usuario.
type AnalyticsService struct {
	repo repository.ChatRepository
	now  func() time.Time
}

func NewAnalyticsService(repo repository.ChatRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// Interactions devuelve totales por personaje y conteos diarios de los ultimos
// days dias. Los mensajes que no llegaron al personaje no cuentan.
func (s *AnalyticsService) Interactions(ctx context.Context, userID string, days int) (domain.InteractionReport, error) {
	if s == nil || s.repo == nil {
		return domain.InteractionReport{}, ErrAnalyticsServiceNotConfigured
	}
	if days <= 0 {
		days = 7
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))
	messages, err := s.repo.ListByUserSince(ctx, strings.TrimSpace(userID), start)
	if err != nil {
		return domain.InteractionReport{}, err
	}

	report := domain.InteractionReport{Days: days}
	daily := make([]domain.DailyCount, days)
	for i := range daily {
		daily[i].Day = start.AddDate(0, 0, i).Format(time.DateOnly)
	}
	byCharacter := map[string]*domain.CharacterInteraction{}

	for _, m := range messages {
		ts := m.Timestamp.UTC()
		if ts.Before(start) || !m.Delivered() {
			continue
		}
		report.TotalMessages++
		if idx := int(ts.Sub(start) / (24 * time.Hour)); idx >= 0 && idx < days {
			daily[idx].Messages++
		}

		ci, ok := byCharacter[m.CharacterID]
		if !ok {
			ci = &domain.CharacterInteraction{CharacterID: m.CharacterID}
			byCharacter[m.CharacterID] = ci
		}
		if m.Sender == domain.SenderBot {
			ci.BotMessages++
		} else {
			ci.UserMessages++
		}
		if ts.After(ci.LastActivity) {
			ci.LastActivity = ts
		}
	}

	report.ByCharacter = make([]domain.CharacterInteraction, 0, len(byCharacter))
	for _, ci := range byCharacter {
		report.ByCharacter = append(report.ByCharacter, *ci)
	}
	sort.Slice(report.ByCharacter, func(i, j int) bool {
		a, b := report.ByCharacter[i], report.ByCharacter[j]
		if a.UserMessages+a.BotMessages != b.UserMessages+b.BotMessages {
			return a.UserMessages+a.BotMessages > b.UserMessages+b.BotMessages
		}
		return a.CharacterID < b.CharacterID
	})
	report.Daily = daily
	return report, nil
}
