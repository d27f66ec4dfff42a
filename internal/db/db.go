package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storypals/internal/config"
)

//go:embed schema.sql
var schema string

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// NewPool abre el pool y espera a que Postgres responda, reintentando el
// ping con backoff lineal.
func NewPool(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if attempt == connectAttempts {
			break
		}
		logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * connectBackoff):
		}
	}
	pool.Close()
	return nil, fmt.Errorf("ping database: %w", err)
}

// Migrate aplica el esquema embebido y siembra el catalogo de cuentos en una
// sola transaccion. Es idempotente.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	const query = `
		INSERT INTO stories (id, title, description, character_id, category, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (title, character_id) DO NOTHING
	`
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, s := range seedStories {
		batch.Queue(query, uuid.NewString(), s.title, s.description, s.characterID, s.category, s.content, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed stories: %w", err)
	}
	return tx.Commit(ctx)
}

type seedStory struct {
	title, description, characterID, category, content string
}

var seedStories = []seedStory{
	{
		title:       "The Star Who Lost Her Twinkle",
		description: "Luna helps a shy little star find her sparkle again.",
		characterID: "luna",
		category:    "space",
		content:     "High above the sleepy town, a tiny star named Pip had stopped twinkling. Luna flew up on a moonbeam to ask what was wrong...",
	},
	{
		title:       "Gogo and the Lost Fossil",
		description: "A dig through time to return a fossil to its family.",
		characterID: "gogo",
		category:    "history",
		content:     "Gogo the dinosaur tapped the ground with his tail. Something shiny poked out of the sand: a fossil that did not belong here...",
	},
	{
		title:       "Dodo's Night Forest Walk",
		description: "Meet the animals that wake up when the sun goes down.",
		characterID: "dodo",
		category:    "nature",
		content:     "When the moon rose over the old oak tree, Dodo the owl fluffed her feathers. \"Tonight,\" she hooted, \"we meet the night forest.\"...",
	},
	{
		title:       "Captain Leo and the Brave Little Boat",
		description: "Courage is doing the right thing even when you feel small.",
		characterID: "leo",
		category:    "friendship",
		content:     "The waves were tall and the boat was small, but Captain Leo smiled. \"Being brave doesn't mean you're not scared,\" he said...",
	},
}
