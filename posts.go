package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The post queries below do not look at who is asking. Callers check
// post.Author against the session before reading or changing a post.

const postColumns = "id, author_id, title, content, tags, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var tags string
	var created, updated int64
	err := row.Scan(&post.ID, &post.Author, &post.Title, &post.Content, &tags, &post.Status, &created, &updated)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of post %s: %w", post.ID, err)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.CreatedAt = time.Unix(0, created).UTC()
	post.UpdatedAt = time.Unix(0, updated).UTC()
	return &post, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) createPost(ctx context.Context, ownerID string, fields PostFields) (*Post, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &Post{
		ID:        uuid.NewString(),
		Title:     fields.Title,
		Content:   fields.Content,
		Tags:      normalizeTags(fields.Tags),
		Status:    fields.Status,
		Author:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Status == "" {
		post.Status = StatusDraft
	}

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Author, post.Title, post.Content, tags, post.Status,
		now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}

	return post, nil
}

func (s *Store) getPostByID(ctx context.Context, id string) (*Post, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	post, err := scanPost(db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}
	return post, nil
}

// listPostsByOwner returns the owner's posts, most recently updated first.
func (s *Store) listPostsByOwner(ctx context.Context, ownerID string, filter StatusFilter) ([]Post, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = ?`
	args := []any{ownerID}
	if !filter.Any() {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY updated_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// updatePost applies a sparse patch. updated_at moves forward even when
// nothing else changes.
func (s *Store) updatePost(ctx context.Context, id string, fields PostFields) (*Post, error) {
	post, err := s.getPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	if fields.Title != "" {
		post.Title = fields.Title
	}
	if fields.Content != "" {
		post.Content = fields.Content
	}
	if fields.Tags != nil {
		post.Tags = normalizeTags(fields.Tags)
	}
	if fields.Status != "" {
		post.Status = fields.Status
	}
	post.UpdatedAt = s.now()

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return nil, err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	result, err := db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, content = ?, tags = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		post.Title, post.Content, tags, post.Status, post.UpdatedAt.UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return post, nil
}

func (s *Store) deletePost(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
