package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"storypals/internal/domain"
	"storypals/internal/repository"
)

// HistoryService persiste y consulta el historial de chat por par (usuario, personaje).
type HistoryService struct {
	repo repository.ChatRepository
	now  func() time.Time
}

var (
	ErrHistoryServiceNotConfigured = errors.New("history service not configured")
	ErrHistoryInvalidInput         = errors.New("history invalid input")
)

const maxHistoryMessages = 500

func NewHistoryService(repo repository.ChatRepository) *HistoryService {
	return &HistoryService{repo: repo, now: time.Now}
}

func (s *HistoryService) Get(ctx context.Context, userID, characterID string) ([]domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return nil, ErrHistoryServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	characterID = strings.TrimSpace(characterID)
	if userID == "" || characterID == "" {
		return []domain.ChatMessage{}, nil
	}
	return s.repo.ListByPair(ctx, userID, characterID)
}

// Save reemplaza el historial del par. Normaliza cada mensaje antes de persistir.
func (s *HistoryService) Save(ctx context.Context, userID, characterID string, messages []domain.ChatMessage) error {
	if s == nil || s.repo == nil {
		return ErrHistoryServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	characterID = strings.TrimSpace(characterID)
	if userID == "" || characterID == "" {
		return ErrHistoryInvalidInput
	}
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
	}

	normalized := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		m.Text = strings.TrimSpace(m.Text)
		if m.Text == "" {
			continue
		}
		switch m.Sender {
		case domain.SenderUser, domain.SenderBot:
		default:
			return ErrHistoryInvalidInput
		}
		if _, err := uuid.Parse(m.ID); err != nil {
			m.ID = uuid.NewString()
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = s.now().UTC()
		}
		m.CharacterID = characterID
		switch {
		case m.Sender == domain.SenderBot:
			m.Status = domain.StatusSent
		case m.Status == domain.StatusSending:
			// Nadie retoma una entrega guardada a medias.
			m.Status = domain.StatusFailed
		}
		normalized = append(normalized, m)
	}

	return s.repo.ReplacePair(ctx, userID, characterID, normalized)
}

// HistoryFilter restringe la busqueda en el historial de un usuario.
type HistoryFilter struct {
	CharacterID string
	Search      string
	Days        int
}

// Search filtra linealmente los mensajes del usuario dentro de la ventana de dias.
func (s *HistoryService) Search(ctx context.Context, userID string, filter HistoryFilter) ([]domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return nil, ErrHistoryServiceNotConfigured
	}
	days := filter.Days
	if days <= 0 {
		days = 30
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	messages, err := s.repo.ListByUserSince(ctx, strings.TrimSpace(userID), since)
	if err != nil {
		return nil, err
	}

	character := strings.TrimSpace(filter.CharacterID)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if character != "" && !strings.EqualFold(m.CharacterID, character) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Text), search) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
