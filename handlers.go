package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalid("Invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalid("Invalid request body")
	}
	return nil
}

type accountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toAccountResponse(a *Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Email: a.Email}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Registration failed")
		return
	}

	account, err := a.store.register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "Registration failed")
		return
	}

	if err := a.startSession(w, account); err != nil {
		writeError(w, r, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Login failed")
		return
	}

	account, err := a.store.verify(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "Login failed")
		return
	}

	if err := a.startSession(w, account); err != nil {
		writeError(w, r, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Logout only clears the cookie; the token itself stays valid until it
// expires.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (a *App) Me(w http.ResponseWriter, r *http.Request, account *Account) {
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (a *App) ListPosts(w http.ResponseWriter, r *http.Request, account *Account) {
	var filter StatusFilter
	if status := Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			writeError(w, r, invalid("Status must be draft or published"), "")
			return
		}
		filter.Status = status
	}

	groups, err := a.store.listGrouped(r.Context(), account, filter)
	if err != nil {
		writeError(w, r, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

type postRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Status  Status   `json:"status"`
}

func (a *App) CreatePost(w http.ResponseWriter, r *http.Request, account *Account) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Failed to create post")
		return
	}

	post, err := a.store.newPost(r.Context(), account, PostFields{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Status:  req.Status,
	})
	if err != nil {
		writeError(w, r, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (a *App) GetPost(w http.ResponseWriter, r *http.Request, account *Account) {
	post, err := a.store.ownedPost(r.Context(), account, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *App) UpdatePost(w http.ResponseWriter, r *http.Request, account *Account) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Failed to update post")
		return
	}

	post, err := a.store.editPost(r.Context(), account, r.PathValue("id"), PostFields{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Status:  req.Status,
	})
	if err != nil {
		writeError(w, r, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *App) DeletePost(w http.ResponseWriter, r *http.Request, account *Account) {
	if err := a.store.removePost(r.Context(), account, r.PathValue("id")); err != nil {
		writeError(w, r, err, "Failed to delete post")
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

type draftRequest struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (a *App) SaveDraft(w http.ResponseWriter, r *http.Request, account *Account) {
	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Failed to save draft")
		return
	}

	post, created, err := a.store.saveDraft(r.Context(), account, req.ID, PostFields{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, err, "Failed to save draft")
		return
	}
	writeJSON(w, createdStatus(created), post)
}

func (a *App) Publish(w http.ResponseWriter, r *http.Request, account *Account) {
	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Failed to publish post")
		return
	}

	post, created, err := a.store.publish(r.Context(), account, req.ID, PostFields{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, err, "Failed to publish post")
		return
	}
	writeJSON(w, createdStatus(created), post)
}

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
