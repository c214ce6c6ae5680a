package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func setupTestWorkflow(t *testing.T) (*Store, *Account, *Account) {
	t.Helper()
	store := setupTestPosts(t)
	ctx := context.Background()

	alice, err := store.register(ctx, "Alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("register() error: %v", err)
	}
	bob, err := store.register(ctx, "Bob", "bob@example.com", "password123")
	if err != nil {
		t.Fatalf("register() error: %v", err)
	}
	return store, alice, bob
}

func TestOwnedPost(t *testing.T) {
	store, alice, bob := setupTestWorkflow(t)
	ctx := context.Background()

	post, _ := store.createPost(ctx, alice.ID, PostFields{Title: "Mine"})

	if _, err := store.ownedPost(ctx, alice, post.ID); err != nil {
		t.Errorf("expected owner to load post, got %v", err)
	}
	if _, err := store.ownedPost(ctx, bob, post.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for another owner, got %v", err)
	}
	if _, err := store.ownedPost(ctx, alice, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveDraft_New(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)

	post, created, err := store.saveDraft(context.Background(), alice, "", PostFields{Title: "  Hi  "})
	if err != nil {
		t.Fatalf("saveDraft() error: %v", err)
	}

	if !created {
		t.Error("expected created to be true")
	}
	if post.Title != "Hi" {
		t.Errorf("expected trimmed title 'Hi', got %q", post.Title)
	}
	if post.Status != StatusDraft {
		t.Errorf("expected status draft, got %q", post.Status)
	}
	if post.Author != alice.ID {
		t.Errorf("expected author %q, got %q", alice.ID, post.Author)
	}
}

func TestSaveDraft_ExistingPublishedBecomesDraft(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)
	ctx := context.Background()

	published, _ := store.createPost(ctx, alice.ID, PostFields{Title: "Live", Content: "c", Status: StatusPublished})

	post, created, err := store.saveDraft(ctx, alice, published.ID, PostFields{Content: "edited"})
	if err != nil {
		t.Fatalf("saveDraft() error: %v", err)
	}

	if created {
		t.Error("expected created to be false")
	}
	if post.Status != StatusDraft {
		t.Errorf("expected status draft, got %q", post.Status)
	}
	if post.Title != "Live" || post.Content != "edited" {
		t.Errorf("expected title kept and content replaced, got %+v", post)
	}
}

func TestSaveDraft_OtherOwner(t *testing.T) {
	store, alice, bob := setupTestWorkflow(t)
	ctx := context.Background()

	post, _ := store.createPost(ctx, alice.ID, PostFields{Title: "Mine"})

	_, _, err := store.saveDraft(ctx, bob, post.ID, PostFields{Title: "Stolen"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	stored, _ := store.getPostByID(ctx, post.ID)
	if stored.Title != "Mine" {
		t.Errorf("expected title unchanged, got %q", stored.Title)
	}
}

func TestSaveDraft_TitleTooLong(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)
	long := strings.Repeat("a", 201)

	_, _, err := store.saveDraft(context.Background(), alice, "", PostFields{Title: long})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestPublish_RejectsBeforeLookup(t *testing.T) {
	store, alice, bob := setupTestWorkflow(t)
	ctx := context.Background()

	post, _ := store.createPost(ctx, alice.ID, PostFields{Title: "Mine"})

	tests := []struct {
		name    string
		account *Account
		id      string
		fields  PostFields
	}{
		{"empty title", alice, "", PostFields{Content: "c"}},
		{"blank title", alice, "", PostFields{Title: "   ", Content: "c"}},
		{"empty content", alice, "", PostFields{Title: "t", Content: "<p><br></p>"}},
		{"unknown id", alice, "missing", PostFields{Content: "c"}},
		{"other owner", bob, post.ID, PostFields{Title: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.publish(ctx, tt.account, tt.id, tt.fields)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	posts, _ := store.listPostsByOwner(ctx, alice.ID, StatusFilter{})
	if len(posts) != 1 {
		t.Errorf("expected no new posts, got %d", len(posts))
	}
	if posts[0].Status != StatusDraft {
		t.Errorf("expected existing post to stay a draft, got %q", posts[0].Status)
	}
}

func TestPublish(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)
	ctx := context.Background()

	post, created, err := store.publish(ctx, alice, "", PostFields{Title: "T", Content: "<p>c</p>"})
	if err != nil {
		t.Fatalf("publish() error: %v", err)
	}
	if !created || post.Status != StatusPublished {
		t.Errorf("expected a new published post, got created=%v %+v", created, post)
	}

	draft, _ := store.createPost(ctx, alice.ID, PostFields{Title: "Draft", Tags: []string{"keep"}})
	post, created, err = store.publish(ctx, alice, draft.ID, PostFields{Title: "Draft", Content: "done"})
	if err != nil {
		t.Fatalf("publish() error: %v", err)
	}
	if created {
		t.Error("expected created to be false for an existing post")
	}
	if post.ID != draft.ID || post.Status != StatusPublished || post.Content != "done" {
		t.Errorf("unexpected published post %+v", post)
	}
	if len(post.Tags) != 1 || post.Tags[0] != "keep" {
		t.Errorf("expected tags kept, got %v", post.Tags)
	}
}

func TestNewPost(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)
	ctx := context.Background()

	post, err := store.newPost(ctx, alice, PostFields{Title: "T", Content: "C", Status: StatusPublished})
	if err != nil {
		t.Fatalf("newPost() error: %v", err)
	}
	if post.Status != StatusPublished {
		t.Errorf("expected status published, got %q", post.Status)
	}

	_, err = store.newPost(ctx, alice, PostFields{Title: "T", Content: "C", Status: "archived"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown status, got %v", err)
	}
}

func TestEditPost(t *testing.T) {
	store, alice, bob := setupTestWorkflow(t)
	ctx := context.Background()

	post, _ := store.createPost(ctx, alice.ID, PostFields{Title: "T", Content: "C", Status: StatusPublished})

	edited, err := store.editPost(ctx, alice, post.ID, PostFields{Title: "New"})
	if err != nil {
		t.Fatalf("editPost() error: %v", err)
	}
	if edited.Title != "New" || edited.Status != StatusPublished {
		t.Errorf("expected only title to change, got %+v", edited)
	}

	if _, err := store.editPost(ctx, bob, post.ID, PostFields{Title: "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemovePost(t *testing.T) {
	store, alice, bob := setupTestWorkflow(t)
	ctx := context.Background()

	post, _ := store.createPost(ctx, alice.ID, PostFields{Title: "T"})

	if err := store.removePost(ctx, bob, post.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := store.removePost(ctx, alice, post.ID); err != nil {
		t.Fatalf("removePost() error: %v", err)
	}
	if err := store.removePost(ctx, alice, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListGrouped(t *testing.T) {
	store, alice, _ := setupTestWorkflow(t)
	ctx := context.Background()

	store.createPost(ctx, alice.ID, PostFields{Title: "D1"})
	store.createPost(ctx, alice.ID, PostFields{Title: "P1", Status: StatusPublished})
	store.createPost(ctx, alice.ID, PostFields{Title: "D2"})

	groups, err := store.listGrouped(ctx, alice, StatusFilter{})
	if err != nil {
		t.Fatalf("listGrouped() error: %v", err)
	}
	if len(groups.Draft) != 2 || groups.Draft[0].Title != "D2" {
		t.Errorf("unexpected drafts %+v", groups.Draft)
	}
	if len(groups.Published) != 1 || groups.Published[0].Title != "P1" {
		t.Errorf("unexpected published %+v", groups.Published)
	}

	groups, _ = store.listGrouped(ctx, alice, StatusFilter{Status: StatusPublished})
	if groups.Draft == nil || len(groups.Draft) != 0 {
		t.Errorf("expected empty non-nil drafts, got %#v", groups.Draft)
	}
}
