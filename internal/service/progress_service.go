package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storypals/internal/domain"
	"storypals/internal/repository"
)

var (
	ErrProgressServiceNotConfigured = errors.New("progress service not configured")
	ErrProgressInvalidInput         = errors.New("progress invalid input")
)

const (
	maxEngagementScore = 100
	maxReviewNotes     = 2000
)

// ProgressService registra el progreso de aprendizaje y las notas de los
// padres. Todo acceso pasa por la propiedad del perfil infantil.
type ProgressService struct {
	children repository.ChildRepository
	repo     repository.ProgressRepository
	now      func() time.Time
}

func NewProgressService(children repository.ChildRepository, repo repository.ProgressRepository) *ProgressService {
	return &ProgressService{children: children, repo: repo, now: time.Now}
}

type ProgressInput struct {
	ChildID         string
	CharacterID     string
	Vocabulary      []string
	Topics          []string
	EngagementScore float64
}

func (s *ProgressService) RecordProgress(ctx context.Context, parentID string, input ProgressInput) (domain.LearningProgress, error) {
	if !s.configured() {
		return domain.LearningProgress{}, ErrProgressServiceNotConfigured
	}
	character, ok := domain.FindCharacter(strings.TrimSpace(input.CharacterID))
	if !ok {
		return domain.LearningProgress{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, input.CharacterID)
	}
	if input.EngagementScore < 0 || input.EngagementScore > maxEngagementScore {
		return domain.LearningProgress{}, fmt.Errorf("%w: engagement score must be between 0 and %d", ErrProgressInvalidInput, maxEngagementScore)
	}
	child, err := ownedChild(ctx, s.children, parentID, input.ChildID)
	if err != nil {
		return domain.LearningProgress{}, err
	}

	p := domain.LearningProgress{
		ID:                uuid.NewString(),
		ChildID:           child.ID,
		CharacterID:       character.ID,
		VocabularyLearned: cleanList(input.Vocabulary),
		TopicsDiscussed:   cleanList(input.Topics),
		EngagementScore:   input.EngagementScore,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.repo.CreateProgress(ctx, p); err != nil {
		return domain.LearningProgress{}, err
	}
	return p, nil
}

// Progress devuelve el progreso del nino, del registro mas reciente al mas antiguo.
func (s *ProgressService) Progress(ctx context.Context, parentID, childID string) ([]domain.LearningProgress, error) {
	if !s.configured() {
		return nil, ErrProgressServiceNotConfigured
	}
	child, err := ownedChild(ctx, s.children, parentID, childID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProgressByChild(ctx, child.ID)
}

type ReviewInput struct {
	ChildID     string
	CharacterID string
	Notes       string
	Rating      *int
}

func (s *ProgressService) AddReview(ctx context.Context, parentID string, input ReviewInput) (domain.ParentReview, error) {
	if !s.configured() {
		return domain.ParentReview{}, ErrProgressServiceNotConfigured
	}
	notes := strings.TrimSpace(input.Notes)
	if notes == "" && input.Rating == nil {
		return domain.ParentReview{}, fmt.Errorf("%w: notes or rating required", ErrProgressInvalidInput)
	}
	if len([]rune(notes)) > maxReviewNotes {
		return domain.ParentReview{}, fmt.Errorf("%w: notes too long", ErrProgressInvalidInput)
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return domain.ParentReview{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrProgressInvalidInput)
	}
	characterID := ""
	if key := strings.TrimSpace(input.CharacterID); key != "" {
		character, ok := domain.FindCharacter(key)
		if !ok {
			return domain.ParentReview{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, key)
		}
		characterID = character.ID
	}
	child, err := ownedChild(ctx, s.children, parentID, input.ChildID)
	if err != nil {
		return domain.ParentReview{}, err
	}

	review := domain.ParentReview{
		ID:          uuid.NewString(),
		ChildID:     child.ID,
		CharacterID: characterID,
		Notes:       notes,
		Rating:      input.Rating,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return domain.ParentReview{}, err
	}
	return review, nil
}

func (s *ProgressService) Reviews(ctx context.Context, parentID, childID string) ([]domain.ParentReview, error) {
	if !s.configured() {
		return nil, ErrProgressServiceNotConfigured
	}
	child, err := ownedChild(ctx, s.children, parentID, childID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReviewsByChild(ctx, child.ID)
}

func (s *ProgressService) configured() bool {
	return s != nil && s.children != nil && s.repo != nil
}
