// Package bootstrap builds the logger and the session store the commands
// share.
package bootstrap

import (
	"context"
	"fmt"
	"os/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/repository/postgres"
	"github.com/jafarshop/procurement/internal/session"
)

// NewLogger returns a development logger outside production and a JSON
// production logger in it, at LOG_LEVEL.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// OpenSessionStore opens the configured session backend. The returned
// close func releases its connection.
func OpenSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session.Store, func() error, error) {
	namespace := sessionNamespace()

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
		return session.NewStore(session.NewRedisKV(client, namespace), logger), client.Close, nil

	case config.SessionBackendPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSessionRepository(db, namespace, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Using Postgres session store", zap.String("host", cfg.Database.Host))
		return session.NewStore(repo, logger), db.Close, nil

	default:
		logger.Debug("Using file session store", zap.String("path", cfg.Session.File))
		return session.NewStore(session.NewFileKV(cfg.Session.File), logger), func() error { return nil }, nil
	}
}

// sessionNamespace keeps operators sharing a Redis or Postgres backend apart
func sessionNamespace() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "default"
	}
	return u.Username
}
