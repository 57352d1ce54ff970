// Package session persists the bearer token and user profile between runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/domain"
)

// Fixed storage keys. A missing token key means "not authenticated".
const (
	TokenKey = "procurement_token"
	UserKey  = "procurement_user"
)

// KV is the durable key-value storage a Store is built on.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	kv     KV
	logger *zap.Logger
}

// NewStore creates a session store over kv
func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
	}
}

// SaveToken stores the bearer token
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("invalid token provided")
	}
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when there is no session
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// SaveUser stores the profile as JSON
func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// CurrentUser returns the stored profile. A missing or unreadable profile
// yields nil without an error.
func (s *Store) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("Discarding unreadable user profile", zap.Error(err))
		return nil, nil
	}
	return &user, nil
}

// HasSession reports whether a token is stored. Storage errors count as no
// session.
func (s *Store) HasSession(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Error("Failed to check session", zap.Error(err))
		return false
	}
	return token != ""
}

// Clear removes token and profile (logout)
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
