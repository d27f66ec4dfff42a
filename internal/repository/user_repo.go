package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storypals/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando el indice unico de users.email rechaza el insert.
var ErrDuplicateEmail = errors.New("repository: duplicate email")

const uniqueViolation = "23505"

// UserRepository define el contrato de persistencia para cuentas de padres.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetByEmail compara sin distinguir mayusculas. Devuelve pgx.ErrNoRows si no existe.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (domain.User, error)
}

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, display_name, password_hash, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *PgUserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) (domain.User, error) {
	const query = `UPDATE users SET display_name = $2 WHERE id = $1 RETURNING ` + userColumns
	rows, err := r.pool.Query(ctx, query, id, displayName)
	if err != nil {
		return domain.User{}, err
	}
	return pgx.CollectExactlyOneRow(rows, scanUser)
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return domain.User{}, err
	}
	return pgx.CollectExactlyOneRow(rows, scanUser)
}

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
