package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"storypals/internal/domain"
)

// StoryFilter restringe el listado de historias. Campos vacios no filtran.
type StoryFilter struct {
	CharacterID string
	Category    string
}

type StoryRepository interface {
	List(ctx context.Context, filter StoryFilter) ([]domain.Story, error)
	GetByID(ctx context.Context, id string) (domain.Story, error)
}

type PgStoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgStoryRepository(pool *pgxpool.Pool) *PgStoryRepository {
	return &PgStoryRepository{pool: pool}
}

func (r *PgStoryRepository) List(ctx context.Context, filter StoryFilter) ([]domain.Story, error) {
	const query = `
		SELECT id, title, description, character_id, category, content, created_at
		FROM stories
		WHERE ($1 = '' OR LOWER(character_id) = LOWER($1))
		  AND ($2 = '' OR LOWER(category) = LOWER($2))
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(filter.CharacterID), strings.TrimSpace(filter.Category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []domain.Story{}
	for rows.Next() {
		var s domain.Story
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Description,
			&s.CharacterID,
			&s.Category,
			&s.Content,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *PgStoryRepository) GetByID(ctx context.Context, id string) (domain.Story, error) {
	const query = `
		SELECT id, title, description, character_id, category, content, created_at
		FROM stories
		WHERE id = $1
	`
	var s domain.Story
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.CharacterID,
		&s.Category,
		&s.Content,
		&s.CreatedAt,
	)
	if err != nil {
		return domain.Story{}, err
	}
	return s, nil
}
