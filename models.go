package main

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// StatusFilter restricts a post listing. The zero value lists every post.
type StatusFilter struct {
	Status Status
}

func (f StatusFilter) Any() bool {
	return f.Status == ""
}

type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Status    Status    `json:"status"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostFields is a sparse patch. Empty strings and a nil Tags slice mean
// "keep the stored value"; a non-nil empty Tags slice clears the tags.
type PostFields struct {
	Title   string
	Content string
	Tags    []string
	Status  Status
}
