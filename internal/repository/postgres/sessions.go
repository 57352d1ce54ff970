package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/config"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS console_sessions (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (namespace, key)
	)
`

// NewConnection opens and pings a lib/pq connection
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

type sessionRepository struct {
	db        *sql.DB
	namespace string
	logger    *zap.Logger
}

// NewSessionRepository creates a Postgres-backed session KV. It satisfies
// session.KV.
func NewSessionRepository(db *sql.DB, namespace string, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:        db,
		namespace: namespace,
		logger:    logger,
	}
}

// EnsureSchema creates the sessions table if needed
func (r *sessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sessionSchema); err != nil {
		r.logger.Error("Failed to create sessions table", zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM console_sessions
		WHERE namespace = $1 AND key = $2
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session value", zap.String("key", key), zap.Error(err))
		return "", false, err
	}

	return value, true, nil
}

func (r *sessionRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO console_sessions (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, r.namespace, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to set session value", zap.String("key", key), zap.Error(err))
		return err
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, keys ...string) error {
	query := `
		DELETE FROM console_sessions
		WHERE namespace = $1 AND key = ANY($2)
	`

	_, err := r.db.ExecContext(ctx, query, r.namespace, pq.Array(keys))
	if err != nil {
		r.logger.Error("Failed to delete session values", zap.Error(err))
		return err
	}

	return nil
}
