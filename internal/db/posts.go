package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const postSelect = `
	SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.author_id,
		u.id, u.email, u.password, u.name, u.is_admin
	FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	var u User
	err := row.Scan(&p.Id, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgUrl, &p.AuthorId,
		&u.Id, &u.Email, &u.Password, &u.Name, &u.IsAdmin)
	if err != nil {
		return nil, err
	}
	p.Author = &u
	return &p, nil
}

// ListPosts returns every post in creation order.
func (s *Store) ListPosts(ctx context.Context) ([]*Post, error) {
	rows, err := s.DB.QueryContext(ctx, postSelect+" ORDER BY p.id")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	p, err := scanPost(s.DB.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// CreatePost inserts post and sets its Id.
func (s *Store) CreatePost(ctx context.Context, post *Post) error {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO posts (title, subtitle, date, body, img_url, author_id) VALUES (?, ?, ?, ?, ?, ?)",
		post.Title, post.Subtitle, post.Date, string(post.Body), post.ImgUrl, post.AuthorId)
	if err != nil {
		if uniqueViolation(err, "posts.title") {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("create post: %w", err)
	}
	post.Id, err = res.LastInsertId()
	return err
}

// UpdatePost overwrites the editable fields. The author and date are kept.
func (s *Store) UpdatePost(ctx context.Context, id int64, f PostFields) (*Post, error) {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE posts SET title = ?, subtitle = ?, img_url = ?, body = ? WHERE id = ?",
		f.Title, f.Subtitle, f.ImgUrl, string(f.Body), id)
	if err != nil {
		if uniqueViolation(err, "posts.title") {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes a post together with its comments.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
