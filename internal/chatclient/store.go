package chatclient

import (
	"sync"

	"storypals/internal/domain"
)

// Store guarda los mensajes de una vista de chat en orden de insercion.
// Nunca reordena ni elimina; Reset solo se usa al hidratar el historial.
type Store struct {
	mu    sync.RWMutex
	msgs  []domain.ChatMessage
	index map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) Append(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[msg.ID] = len(s.msgs)
	s.msgs = append(s.msgs, msg)
}

// UpdateStatus cambia el estado del mensaje con ese id. Devuelve false si no existe.
func (s *Store) UpdateStatus(id string, status domain.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.msgs[i].Status = status
	return true
}

// Messages devuelve una copia de los mensajes.
func (s *Store) Messages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Last devuelve el mensaje mas reciente; la vista lo usa para el auto-scroll.
func (s *Store) Last() (domain.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.msgs) == 0 {
		return domain.ChatMessage{}, false
	}
	return s.msgs[len(s.msgs)-1], true
}

func (s *Store) Get(id string) (domain.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.ChatMessage{}, false
	}
	return s.msgs[i], true
}

// LastFailed devuelve el mensaje de usuario fallido mas reciente.
func (s *Store) LastFailed() (domain.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.msgs) - 1; i >= 0; i-- {
		if s.msgs[i].Sender == domain.SenderUser && s.msgs[i].Status == domain.StatusFailed {
			return s.msgs[i], true
		}
	}
	return domain.ChatMessage{}, false
}

func (s *Store) Reset(msgs []domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = make([]domain.ChatMessage, len(msgs))
	copy(s.msgs, msgs)
	s.index = make(map[string]int, len(msgs))
	for i, m := range s.msgs {
		s.index[m.ID] = i
	}
}
