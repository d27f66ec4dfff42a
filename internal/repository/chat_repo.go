package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storypals/internal/domain"
)

// ChatRepository persiste el historial de chat por par (usuario, personaje).
type ChatRepository interface {
	ListByPair(ctx context.Context, userID, characterID string) ([]domain.ChatMessage, error)
	ReplacePair(ctx context.Context, userID, characterID string, messages []domain.ChatMessage) error
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.ChatMessage, error)
}

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

func (r *PgChatRepository) ListByPair(ctx context.Context, userID, characterID string) ([]domain.ChatMessage, error) {
	const query = `
		SELECT id, character_id, text, sender, status, sent_at
		FROM chat_messages
		WHERE user_id = $1 AND character_id = $2
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, characterID)
	if err != nil {
		return nil, err
	}
	return scanChatMessages(rows)
}

// ReplacePair reemplaza el historial completo del par dentro de una transaccion.
func (r *PgChatRepository) ReplacePair(ctx context.Context, userID, characterID string, messages []domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteQuery = `DELETE FROM chat_messages WHERE user_id = $1 AND character_id = $2`
	if _, err := tx.Exec(ctx, deleteQuery, userID, characterID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	const insertQuery = `
		INSERT INTO chat_messages (id, user_id, character_id, position, text, sender, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	batch := &pgx.Batch{}
	for i, m := range messages {
		batch.Queue(insertQuery, m.ID, userID, characterID, i, m.Text, string(m.Sender), string(m.Status), m.Timestamp)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgChatRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.ChatMessage, error) {
	const query = `
		SELECT id, character_id, text, sender, status, sent_at
		FROM chat_messages
		WHERE user_id = $1 AND sent_at >= $2
		ORDER BY sent_at ASC, position ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	return scanChatMessages(rows)
}

func scanChatMessages(rows pgx.Rows) ([]domain.ChatMessage, error) {
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var (
			msg    domain.ChatMessage
			sender string
			status string
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.CharacterID,
			&msg.Text,
			&sender,
			&status,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		msg.Sender = domain.Sender(sender)
		msg.Status = domain.Status(status)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
