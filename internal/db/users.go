package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const userColumns = "id, email, password, name, is_admin"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.Id, &u.Email, &u.Password, &u.Name, &u.IsAdmin); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. The first account ever created gets the admin role.
func (s *Store) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password, name, is_admin)
		VALUES (?, ?, ?, NOT EXISTS (SELECT 1 FROM users))
		RETURNING `+userColumns,
		nu.Email, nu.Password, nu.Name)
	u, err := scanUser(row)
	if err != nil {
		if uniqueViolation(err, "users.email") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindUserByEmail returns nil, nil when no user has that email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
