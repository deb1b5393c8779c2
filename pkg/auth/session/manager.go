package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/redis/go-redis/v9"

	redisclient "github.com/hollydays/wishlist-backend/pkg/redis"
)

// Manager tracks live access-token sessions in redis keyed by jti. A token
// whose session has been revoked is rejected even before it expires.
type Manager struct {
	redis *redisclient.Client
	cfg   config.JWTConfig
}

// AccessSessionChecker is the read-only surface the auth middleware consumes.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

func NewManager(redisClient *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if redisClient == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.AccessTokenTTL() <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &Manager{redis: redisClient, cfg: cfg}, nil
}

// NewAccessID generates a fresh jti for a minted token.
func NewAccessID() string {
	return uuid.NewString()
}

// Create registers a session for the given access id with the token's TTL.
func (m *Manager) Create(ctx context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	key := m.redis.SessionKey(accessID)
	if err := m.redis.Set(ctx, key, "1", m.cfg.AccessTokenTTL()); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Revoke deletes the session, invalidating the token immediately.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	return m.redis.Del(ctx, m.redis.SessionKey(accessID))
}

// HasSession reports whether the access id still has a live session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if accessID == "" {
		return false, nil
	}
	_, err := m.redis.Get(ctx, m.redis.SessionKey(accessID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
