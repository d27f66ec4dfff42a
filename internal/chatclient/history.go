package chatclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storypals/internal/domain"
)

// HistoryFetcher obtiene el historial guardado de un par (usuario, personaje).
type HistoryFetcher interface {
	ChatHistory(ctx context.Context, userID, characterID string) ([]domain.ChatMessage, error)
}

// HistoryLoader hidrata una vista de chat una sola vez por activacion.
type HistoryLoader struct {
	fetcher   HistoryFetcher
	userID    string
	character domain.Character
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	loaded bool
}

func NewHistoryLoader(fetcher HistoryFetcher, userID string, character domain.Character, logger *zap.Logger) *HistoryLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryLoader{
		fetcher:   fetcher,
		userID:    userID,
		character: character,
		logger:    logger,
		now:       time.Now,
	}
}

// Greeting es el mensaje de bienvenida sintetizado del personaje.
func Greeting(character domain.Character, now time.Time) domain.ChatMessage {
	return domain.ChatMessage{
		ID:          uuid.NewString(),
		Text:        fmt.Sprintf("Hello! I'm %s. Let's chat and create some amazing stories together!", character.Name),
		Sender:      domain.SenderBot,
		Timestamp:   now.UTC(),
		CharacterID: character.ID,
		Status:      domain.StatusSent,
	}
}

// Initial resuelve el contenido inicial de la vista sin tocar ningun Store.
// ok es false si esta activacion ya cargo. Los errores se registran y se
// convierten en warning; nunca se devuelven. warning no vacio significa que
// el historial no se pudo leer.
func (l *HistoryLoader) Initial(ctx context.Context) (msgs []domain.ChatMessage, warning string, ok bool) {
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		return nil, "", false
	}
	l.loaded = true
	l.mu.Unlock()

	greeting := []domain.ChatMessage{Greeting(l.character, l.now())}
	if l.userID == "" || l.fetcher == nil {
		return greeting, "", true
	}

	history, err := l.fetcher.ChatHistory(ctx, l.userID, l.character.ID)
	if err != nil {
		l.logger.Warn("load chat history failed",
			zap.String("user_id", l.userID),
			zap.String("character_id", l.character.ID),
			zap.Error(err),
		)
		return greeting, msgLoadFailed, true
	}
	if len(history) == 0 {
		return greeting, "", true
	}
	for i := range history {
		if history[i].ID == "" {
			history[i].ID = uuid.NewString()
		}
		if history[i].CharacterID == "" {
			history[i].CharacterID = l.character.ID
		}
	}
	// Una entrega guardada en sending ya no tiene quien la termine.
	return settleSending(history), "", true
}
