package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession stores a new opaque session id for userID.
func (s *Store) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)",
		sid, userID, time.Now().Add(ttl).Unix())
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sid, nil
}

// SessionUser resolves a live session to its user id. Expired sessions are
// removed and reported as ErrSessionNotFound.
func (s *Store) SessionUser(ctx context.Context, sid string) (int64, error) {
	var userID, expiresAt int64
	err := s.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE id = ?", sid).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if time.Now().Unix() >= expiresAt {
		if err := s.DeleteSession(ctx, sid); err != nil {
			return 0, err
		}
		return 0, ErrSessionNotFound
	}
	return userID, nil
}

// DeleteSession is a no-op for unknown ids.
func (s *Store) DeleteSession(ctx context.Context, sid string) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return res.RowsAffected()
}
