// Package redisstore implements the server-side session allowlist on Redis.
// A signed token alone cannot be revoked before it expires; requiring the
// session key to still exist lets logout invalidate tokens immediately.
package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore implements ports.SessionStore on Redis. Each session is a
// single key holding the owning user's id with the session TTL applied.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store with the given lifetime. The TTL
// should match the token lifetime so the allowlist never outlives the token.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create stores a new session for the user and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+id, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// UserID returns the user the session belongs to. A missing or expired
// session reports ok=false without an error.
func (s *SessionStore) UserID(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("load session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt session %q: %w", sessionID, err)
	}
	return userID, true, nil
}

// Delete removes the session. Deleting a session that no longer exists is
// not an error; logout stays idempotent.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// newSessionID returns 32 hex characters from a CSPRNG.
func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HealthChecker reports Redis availability for the readiness endpoint.
type HealthChecker struct {
	client *redis.Client
}

// NewHealthChecker creates a health checker backed by the given client.
func NewHealthChecker(client *redis.Client) *HealthChecker {
	return &HealthChecker{client: client}
}

// Name identifies this checker in readiness responses.
func (h *HealthChecker) Name() string { return "redis" }

// HealthCheck pings Redis.
func (h *HealthChecker) HealthCheck(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
