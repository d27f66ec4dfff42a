package domain

import "time"

// LearningProgress registra lo que un nino aprendio conversando con un personaje.
type LearningProgress struct {
	ID                string    `json:"id"`
	ChildID           string    `json:"child_id"`
	CharacterID       string    `json:"character_id"`
	VocabularyLearned []string  `json:"vocabulary_learned"`
	TopicsDiscussed   []string  `json:"topics_discussed"`
	EngagementScore   float64   `json:"engagement_score"`
	CreatedAt         time.Time `json:"created_at"`
}

// ParentReview es una nota del padre sobre las charlas de un nino.
// Rating es opcional; cuando existe va de 1 a 5.
type ParentReview struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	CharacterID string    `json:"character_id,omitempty"`
	Notes       string    `json:"notes"`
	Rating      *int      `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
