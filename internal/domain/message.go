package domain

import "time"

// Sender identifica al autor de un mensaje de chat.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status es el estado de entrega de un mensaje escrito por el usuario.
type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// ChatMessage es un mensaje de una conversacion entre un usuario y un personaje.
type ChatMessage struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
	CharacterID string    `json:"characterId"`
	Status      Status    `json:"status,omitempty"`
}

// Delivered informa si el mensaje llego al backend. Los mensajes del bot
// siempre se consideran enviados; los del usuario solo si no quedaron en
// sending o failed.
func (m ChatMessage) Delivered() bool {
	if m.Sender == SenderBot {
		return true
	}
	return m.Status != StatusSending && m.Status != StatusFailed
}
