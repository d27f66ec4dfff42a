package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storypals/internal/domain"
)

// ProgressRepository persiste el progreso de aprendizaje y las notas de los
// padres. Las listas vienen ordenadas de la mas reciente a la mas antigua.
type ProgressRepository interface {
	CreateProgress(ctx context.Context, p domain.LearningProgress) error
	ListProgressByChild(ctx context.Context, childID string) ([]domain.LearningProgress, error)
	CreateReview(ctx context.Context, r domain.ParentReview) error
	ListReviewsByChild(ctx context.Context, childID string) ([]domain.ParentReview, error)
}

type PgProgressRepository struct {
	pool *pgxpool.Pool
}

func NewPgProgressRepository(pool *pgxpool.Pool) *PgProgressRepository {
	return &PgProgressRepository{pool: pool}
}

func (r *PgProgressRepository) CreateProgress(ctx context.Context, p domain.LearningProgress) error {
	const query = `
		INSERT INTO learning_progress (id, child_id, character_id, vocabulary_learned, topics_discussed, engagement_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.ChildID,
		p.CharacterID,
		nonNil(p.VocabularyLearned),
		nonNil(p.TopicsDiscussed),
		p.EngagementScore,
		p.CreatedAt,
	)
	return err
}

func (r *PgProgressRepository) ListProgressByChild(ctx context.Context, childID string) ([]domain.LearningProgress, error) {
	const query = `
		SELECT id, child_id, character_id, vocabulary_learned, topics_discussed, engagement_score, created_at
		FROM learning_progress
		WHERE child_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, childID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LearningProgress, error) {
		var p domain.LearningProgress
		err := row.Scan(&p.ID, &p.ChildID, &p.CharacterID, &p.VocabularyLearned, &p.TopicsDiscussed, &p.EngagementScore, &p.CreatedAt)
		return p, err
	})
}

func (r *PgProgressRepository) CreateReview(ctx context.Context, rv domain.ParentReview) error {
	const query = `
		INSERT INTO parent_reviews (id, child_id, character_id, notes, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, rv.ID, rv.ChildID, rv.CharacterID, rv.Notes, rv.Rating, rv.CreatedAt)
	return err
}

func (r *PgProgressRepository) ListReviewsByChild(ctx context.Context, childID string) ([]domain.ParentReview, error) {
	const query = `
		SELECT id, child_id, character_id, notes, rating, created_at
		FROM parent_reviews
		WHERE child_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, childID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ParentReview, error) {
		var rv domain.ParentReview
		err := row.Scan(&rv.ID, &rv.ChildID, &rv.CharacterID, &rv.Notes, &rv.Rating, &rv.CreatedAt)
		return rv, err
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
