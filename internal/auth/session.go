package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyFmt = "session:%s"

// ErrNoSession is returned when a session id is unknown or has expired.
var ErrNoSession = errors.New("session not found")

// Sessions keeps server-side session state in Redis. Each session id maps to the
// user id it belongs to and expires after ttl without use.
type Sessions struct {
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

func NewSessions(rdb *redis.Client, secret string, ttl time.Duration) *Sessions {
	return &Sessions{rdb: rdb, secret: secret, ttl: ttl}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Create opens a session for userID and returns the signed token handed to the client.
func (s *Sessions) Create(ctx context.Context, userID uint) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, fmt.Sprintf(sessionKeyFmt, sid), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	token, err := GenerateJWT(s.secret, userID, sid, s.ttl)
	if err != nil {
		_ = s.rdb.Del(ctx, fmt.Sprintf(sessionKeyFmt, sid)).Err()
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Resolve returns the user id stored for sid and refreshes its expiry.
func (s *Sessions) Resolve(ctx context.Context, sid string) (uint, error) {
	key := fmt.Sprintf(sessionKeyFmt, sid)
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", sid, err)
	}
	_ = s.rdb.Expire(ctx, key, s.ttl).Err()
	return uint(id), nil
}

func (s *Sessions) Revoke(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(sessionKeyFmt, sid)).Err()
}

// Parse verifies a client token's signature and expiry.
func (s *Sessions) Parse(token string) (*Claims, error) {
	return ParseJWT(s.secret, token)
}
