package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// DB is a sqlx pool whose write transactions are bounded by a semaphore.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens and pings the pool described by cfg.
func NewDB(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", ConnString(cfg))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, 10))
	db.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, 2))
	db.SetConnMaxLifetime(time.Duration(positiveOr(cfg.ConnMaxLifetimeMinutes, 5)) * time.Minute)

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(int64(positiveOr(cfg.MaxConcurrentTx, 4))),
	}, nil
}

// ConnString prefers DATABASE_URL and falls back to the discrete settings.
func ConnString(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// WithTx runs fn in a transaction, committing when fn returns nil. At most
// MaxConcurrentTx transactions are open at once.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for transaction slot: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("postgres: rollback failed")
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS predictions (
		product_sku                 TEXT PRIMARY KEY,
		product_name                TEXT NOT NULL DEFAULT '',
		current_stock               INTEGER NOT NULL,
		predicted_demand            INTEGER NOT NULL,
		confidence_level            DOUBLE PRECISION NOT NULL DEFAULT 0,
		risk_status                 TEXT NOT NULL DEFAULT 'SAFE',
		next_restock_recommendation INTEGER NOT NULL DEFAULT 0,
		reason                      TEXT NOT NULL DEFAULT '',
		prediction_date             TEXT NOT NULL,
		created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema creates the predictions table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create predictions table: %w", err)
	}
	return nil
}
