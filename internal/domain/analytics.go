package domain

import "time"

// CharacterInteraction resume la actividad de un usuario con un personaje.
type CharacterInteraction struct {
	CharacterID  string    `json:"character_id"`
	UserMessages int       `json:"user_messages"`
	BotMessages  int       `json:"bot_messages"`
	LastActivity time.Time `json:"last_activity"`
}

// DailyCount es la cantidad de mensajes de un dia (UTC).
type DailyCount struct {
	Day      string `json:"day"`
	Messages int    `json:"messages"`
}

// InteractionReport agrega la actividad de chat en una ventana de dias.
type InteractionReport struct {
	Days          int                    `json:"days"`
	TotalMessages int                    `json:"total_messages"`
	ByCharacter   []CharacterInteraction `json:"by_character"`
	Daily         []DailyCount           `json:"daily"`
}
