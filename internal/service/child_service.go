package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storypals/internal/domain"
	"storypals/internal/repository"
)

var (
	ErrChildServiceNotConfigured = errors.New("child service not configured")
	ErrChildNotFound             = errors.New("child not found")
	ErrChildInvalidInput         = errors.New("child invalid input")
)

// ChildService administra los perfiles infantiles de un padre.
type ChildService struct {
	repo repository.ChildRepository
}

func NewChildService(repo repository.ChildRepository) *ChildService {
	return &ChildService{repo: repo}
}

type CreateChildInput struct {
	Name         string
	Age          int
	Interests    []string
	ReadingLevel string
}

func (s *ChildService) Create(ctx context.Context, parentID string, input CreateChildInput) (domain.Child, error) {
	if s == nil || s.repo == nil {
		return domain.Child{}, ErrChildServiceNotConfigured
	}
	child := domain.Child{
		ID:           uuid.NewString(),
		ParentID:     parentID,
		Name:         strings.TrimSpace(input.Name),
		Age:          input.Age,
		Interests:    cleanList(input.Interests),
		ReadingLevel: strings.TrimSpace(input.ReadingLevel),
		CreatedAt:    time.Now().UTC(),
	}
	if err := normalizeChild(&child); err != nil {
		return domain.Child{}, err
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return domain.Child{}, err
	}
	return child, nil
}

func (s *ChildService) List(ctx context.Context, parentID string) ([]domain.Child, error) {
	if s == nil || s.repo == nil {
		return nil, ErrChildServiceNotConfigured
	}
	return s.repo.ListByParentID(ctx, parentID)
}

// Get devuelve el perfil solo si pertenece al padre; si no, ErrChildNotFound.
func (s *ChildService) Get(ctx context.Context, parentID, childID string) (domain.Child, error) {
	if s == nil || s.repo == nil {
		return domain.Child{}, ErrChildServiceNotConfigured
	}
	return ownedChild(ctx, s.repo, parentID, childID)
}

// UpdateChildInput es un cambio parcial: los campos nil no se tocan.
type UpdateChildInput struct {
	Name         *string
	Age          *int
	Interests    []string
	ReadingLevel *string
}

func (s *ChildService) Update(ctx context.Context, parentID, childID string, input UpdateChildInput) (domain.Child, error) {
	if s == nil || s.repo == nil {
		return domain.Child{}, ErrChildServiceNotConfigured
	}
	child, err := ownedChild(ctx, s.repo, parentID, childID)
	if err != nil {
		return domain.Child{}, err
	}
	if input.Name != nil {
		child.Name = strings.TrimSpace(*input.Name)
	}
	if input.Age != nil {
		child.Age = *input.Age
	}
	if input.Interests != nil {
		child.Interests = cleanList(input.Interests)
	}
	if input.ReadingLevel != nil {
		child.ReadingLevel = strings.TrimSpace(*input.ReadingLevel)
	}
	if err := normalizeChild(&child); err != nil {
		return domain.Child{}, err
	}
	if err := s.repo.Update(ctx, child); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Child{}, ErrChildNotFound
		}
		return domain.Child{}, err
	}
	return child, nil
}

// Delete borra el perfil y, en cascada, su progreso y notas.
func (s *ChildService) Delete(ctx context.Context, parentID, childID string) error {
	if s == nil || s.repo == nil {
		return ErrChildServiceNotConfigured
	}
	if _, err := uuid.Parse(childID); err != nil {
		return ErrChildNotFound
	}
	if err := s.repo.Delete(ctx, childID, parentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrChildNotFound
		}
		return err
	}
	return nil
}

func ownedChild(ctx context.Context, repo repository.ChildRepository, parentID, childID string) (domain.Child, error) {
	childID = strings.TrimSpace(childID)
	if _, err := uuid.Parse(childID); err != nil {
		return domain.Child{}, ErrChildNotFound
	}
	child, err := repo.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Child{}, ErrChildNotFound
		}
		return domain.Child{}, err
	}
	if child.ParentID != parentID {
		return domain.Child{}, ErrChildNotFound
	}
	return child, nil
}

func normalizeChild(child *domain.Child) error {
	if child.Name == "" || child.Age < 3 || child.Age > 12 {
		return ErrChildInvalidInput
	}
	if child.ReadingLevel == "" {
		child.ReadingLevel = "Beginner"
	}
	child.AgeGroup = domain.AgeGroupFor(child.Age)
	return nil
}

// cleanList recorta cada elemento y descarta vacios y repetidos.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
