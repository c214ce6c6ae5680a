package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Status    string    `json:"status"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Excerpt   string    `json:"excerpt,omitempty"`
}

type Posts struct {
	Draft     []Post `json:"draft"`
	Published []Post `json:"published"`
}

// Draft is the body of save-draft and publish. A nil Tags leaves the stored
// tags alone; an empty non-nil slice clears them.
type Draft struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Update is a sparse edit: empty strings and a nil Tags are left
// unchanged, and an empty non-nil Tags clears the tags.
type Update struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status,omitempty"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client talks to the blog API. The session cookie set by Register or Login
// is kept in its cookie jar and sent on every later call.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Account, error) {
	var account Account
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	var account Account
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns the caller's posts grouped by status. status may be empty,
// "draft" or "published".
func (c *Client) List(ctx context.Context, status string) (*Posts, error) {
	path := "/posts"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var posts Posts
	if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return &posts, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Post, error) {
	return c.post(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil)
}

func (c *Client) Create(ctx context.Context, fields Update) (*Post, error) {
	return c.post(ctx, http.MethodPost, "/posts", fields)
}

func (c *Client) SaveDraft(ctx context.Context, draft Draft) (*Post, error) {
	return c.post(ctx, http.MethodPost, "/posts/save-draft", draft)
}

func (c *Client) Publish(ctx context.Context, draft Draft) (*Post, error) {
	return c.post(ctx, http.MethodPost, "/posts/publish", draft)
}

func (c *Client) Update(ctx context.Context, id string, fields Update) (*Post, error) {
	return c.post(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), fields)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) post(ctx context.Context, method, path string, body any) (*Post, error) {
	var post Post
	if err := c.do(ctx, method, path, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// do sends body as JSON and decodes a 2xx answer into out when out is not
// nil. Other answers become an *APIError carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
