package domain

import "time"

type Story struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CharacterID string    `json:"character_id"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
