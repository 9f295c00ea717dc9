package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kraig-tester/Simple-blog-website/internal/db"
)

const (
	SessionCookie = "jwt"
	sessionPrefix = "session:"
)

// SessionStore maps opaque session ids to user ids. Implemented by *db.Store
// and *RedisSessionStore.
type SessionStore interface {
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	// SessionUser returns db.ErrSessionNotFound for unknown or expired ids.
	SessionUser(ctx context.Context, sid string) (int64, error)
	DeleteSession(ctx context.Context, sid string) error
}

// RedisSessionStore keeps sessions in Redis, expiring them with key TTLs.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisSessionStore) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionPrefix+sid, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sid, nil
}

func (s *RedisSessionStore) SessionUser(ctx context.Context, sid string) (int64, error) {
	val, err := s.rdb.Get(ctx, sessionPrefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return 0, db.ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", sid, err)
	}
	return userID, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionPrefix+sid).Err()
}
