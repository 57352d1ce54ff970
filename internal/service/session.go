package service

import (
	"context"

	"go.uber.org/zap"
)

// SessionGate is the stored login the services check and drop.
type SessionGate interface {
	HasSession(ctx context.Context) bool
	Clear(ctx context.Context) error
}

// clearExpiredSession logs the operator out after the API rejected the
// session token. Clearing outlives the request that hit the failure.
func clearExpiredSession(ctx context.Context, sessions SessionGate, logger *zap.Logger) {
	if err := sessions.Clear(context.WithoutCancel(ctx)); err != nil {
		logger.Error("Failed to clear expired session", zap.Error(err))
		return
	}
	logger.Warn("Session rejected by the API; logged out")
}
