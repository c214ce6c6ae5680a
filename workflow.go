package main

import (
	"context"
	"strings"
)

const untitled = "Untitled"

// ownedPost loads id and checks that account wrote it.
func (s *Store) ownedPost(ctx context.Context, account *Account, id string) (*Post, error) {
	post, err := s.getPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if post.Author != account.ID {
		return nil, ErrUnauthorized
	}
	return post, nil
}

func cleanFields(fields PostFields) (PostFields, error) {
	fields.Title = strings.TrimSpace(fields.Title)
	if err := checkTitle(fields.Title); err != nil {
		return fields, err
	}
	if fields.Status != "" && !fields.Status.Valid() {
		return fields, invalid("Status must be draft or published")
	}
	return fields, nil
}

func requirePublishable(fields PostFields) error {
	if fields.Title == "" || contentEmpty(fields.Content) {
		return invalid("Title and content are required")
	}
	return nil
}

// newPost handles POST /posts: title and content are required and the
// status defaults to draft.
func (s *Store) newPost(ctx context.Context, account *Account, fields PostFields) (*Post, error) {
	fields, err := cleanFields(fields)
	if err != nil {
		return nil, err
	}
	if err := requirePublishable(fields); err != nil {
		return nil, err
	}
	return s.createPost(ctx, account.ID, fields)
}

// saveDraft creates a draft when id is empty, otherwise patches the post and
// moves it back to draft whatever its previous status. created reports
// which of the two happened.
func (s *Store) saveDraft(ctx context.Context, account *Account, id string, fields PostFields) (post *Post, created bool, err error) {
	fields, err = cleanFields(fields)
	if err != nil {
		return nil, false, err
	}
	fields.Status = StatusDraft

	if id == "" {
		if fields.Title == "" {
			fields.Title = untitled
		}
		post, err = s.createPost(ctx, account.ID, fields)
		return post, err == nil, err
	}

	if _, err := s.ownedPost(ctx, account, id); err != nil {
		return nil, false, err
	}
	post, err = s.updatePost(ctx, id, fields)
	return post, false, err
}

// publish validates before touching storage, so a rejected publish never
// looks the post up or changes it.
func (s *Store) publish(ctx context.Context, account *Account, id string, fields PostFields) (post *Post, created bool, err error) {
	fields, err = cleanFields(fields)
	if err != nil {
		return nil, false, err
	}
	if err := requirePublishable(fields); err != nil {
		return nil, false, err
	}
	fields.Status = StatusPublished

	if id == "" {
		post, err = s.createPost(ctx, account.ID, fields)
		return post, err == nil, err
	}

	if _, err := s.ownedPost(ctx, account, id); err != nil {
		return nil, false, err
	}
	post, err = s.updatePost(ctx, id, fields)
	return post, false, err
}

// editPost is the general update: only supplied fields change and a
// supplied status is applied as given.
func (s *Store) editPost(ctx context.Context, account *Account, id string, fields PostFields) (*Post, error) {
	fields, err := cleanFields(fields)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPost(ctx, account, id); err != nil {
		return nil, err
	}
	return s.updatePost(ctx, id, fields)
}

func (s *Store) removePost(ctx context.Context, account *Account, id string) error {
	if _, err := s.ownedPost(ctx, account, id); err != nil {
		return err
	}
	return s.deletePost(ctx, id)
}

type groupedPosts struct {
	Draft     []PostSummary `json:"draft"`
	Published []PostSummary `json:"published"`
}

type PostSummary struct {
	Post
	Excerpt string `json:"excerpt"`
}

func (s *Store) listGrouped(ctx context.Context, account *Account, filter StatusFilter) (*groupedPosts, error) {
	posts, err := s.listPostsByOwner(ctx, account.ID, filter)
	if err != nil {
		return nil, err
	}

	groups := &groupedPosts{Draft: []PostSummary{}, Published: []PostSummary{}}
	for _, p := range posts {
		summary := PostSummary{Post: p, Excerpt: excerpt(p.Content)}
		if p.Status == StatusPublished {
			groups.Published = append(groups.Published, summary)
		} else {
			groups.Draft = append(groups.Draft, summary)
		}
	}
	return groups, nil
}
