package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storypals/internal/domain"
)

type ChildRepository interface {
	Create(ctx context.Context, child domain.Child) error
	GetByID(ctx context.Context, id string) (domain.Child, error)
	ListByParentID(ctx context.Context, parentID string) ([]domain.Child, error)
	// Update y Delete solo afectan perfiles de child.ParentID; si no hay
	// fila devuelven pgx.ErrNoRows.
	Update(ctx context.Context, child domain.Child) error
	Delete(ctx context.Context, id, parentID string) error
}

type PgChildRepository struct {
	pool *pgxpool.Pool
}

func NewPgChildRepository(pool *pgxpool.Pool) *PgChildRepository {
	return &PgChildRepository{pool: pool}
}

func (r *PgChildRepository) Create(ctx context.Context, child domain.Child) error {
	const query = `
		INSERT INTO children (id, parent_id, name, age, age_group, interests, reading_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		child.ID,
		child.ParentID,
		child.Name,
		child.Age,
		child.AgeGroup,
		nonNil(child.Interests),
		child.ReadingLevel,
		child.CreatedAt,
	)
	return err
}

func (r *PgChildRepository) GetByID(ctx context.Context, id string) (domain.Child, error) {
	const query = `
		SELECT id, parent_id, name, age, age_group, interests, reading_level, created_at
		FROM children
		WHERE id = $1
	`
	var c domain.Child
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ParentID,
		&c.Name,
		&c.Age,
		&c.AgeGroup,
		&c.Interests,
		&c.ReadingLevel,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Child{}, err
	}
	return c, nil
}

func (r *PgChildRepository) ListByParentID(ctx context.Context, parentID string) ([]domain.Child, error) {
	const query = `
		SELECT id, parent_id, name, age, age_group, interests, reading_level, created_at
		FROM children
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := []domain.Child{}
	for rows.Next() {
		var c domain.Child
		if err := rows.Scan(
			&c.ID,
			&c.ParentID,
			&c.Name,
			&c.Age,
			&c.AgeGroup,
			&c.Interests,
			&c.ReadingLevel,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return children, nil
}

func (r *PgChildRepository) Update(ctx context.Context, child domain.Child) error {
	const query = `
		UPDATE children
		SET name = $3, age = $4, age_group = $5, interests = $6, reading_level = $7
		WHERE id = $1 AND parent_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		child.ID,
		child.ParentID,
		child.Name,
		child.Age,
		child.AgeGroup,
		nonNil(child.Interests),
		child.ReadingLevel,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgChildRepository) Delete(ctx context.Context, id, parentID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM children WHERE id = $1 AND parent_id = $2`, id, parentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
