package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
)

// CreateComment attaches a comment to an existing post.
func (s *Store) CreateComment(ctx context.Context, postID, authorID int64, text string) (*Comment, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", postID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO comments (text, author_id, post_id) VALUES (?, ?, ?)",
		text, authorID, postID)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Comment{Id: id, PostId: postID, AuthorId: authorID, Text: template.HTML(text)}, nil
}

// ListComments returns the comments on a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]*Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.author_id, c.text,
			u.id, u.email, u.password, u.name, u.is_admin
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ? ORDER BY c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		var u User
		if err := rows.Scan(&c.Id, &c.PostId, &c.AuthorId, &c.Text,
			&u.Id, &u.Email, &u.Password, &u.Name, &u.IsAdmin); err != nil {
			return nil, err
		}
		c.Author = &u
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
