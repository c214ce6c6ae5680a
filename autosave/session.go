package autosave

import (
	"context"
	"slices"
	"sync"
	"time"
)

const (
	DefaultQuietPeriod = 1500 * time.Millisecond
	defaultSaveTimeout = 10 * time.Second
)

// Saver is the part of the API a Session needs. *Client implements it.
type Saver interface {
	SaveDraft(ctx context.Context, draft Draft) (*Post, error)
	Publish(ctx context.Context, draft Draft) (*Post, error)
}

// Session is one open editor. The local document is the source of truth:
// edits change it at once and reach the server on the next auto-save. A
// failed save leaves the local document untouched.
type Session struct {
	saver   Saver
	sched   *Scheduler
	timeout time.Duration

	// OnSaved and OnError, when set, are called after each auto-save from
	// the scheduler's goroutine.
	OnSaved func(*Post)
	OnError func(error)

	mu     sync.Mutex
	doc    Draft
	closed bool
}

// NewSession opens an editor on doc. An empty doc.ID means a post the
// server has not seen yet; the first successful save assigns one. A quiet
// period of zero uses DefaultQuietPeriod.
func NewSession(saver Saver, quiet time.Duration, doc Draft) *Session {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	s := &Session{
		saver:   saver,
		timeout: defaultSaveTimeout,
		doc:     cloneDraft(doc),
	}
	s.sched = NewScheduler(quiet, s.autoSave)
	return s
}

// Document returns a copy of the local document.
func (s *Session) Document() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDraft(s.doc)
}

func (s *Session) SetTitle(title string) {
	s.edit(func(d *Draft) { d.Title = title })
}

func (s *Session) SetContent(content string) {
	s.edit(func(d *Draft) { d.Content = content })
}

func (s *Session) SetTags(tags []string) {
	tags = slices.Clone(tags)
	if tags == nil {
		tags = []string{}
	}
	s.edit(func(d *Draft) { d.Tags = tags })
}

func (s *Session) edit(apply func(*Draft)) {
	s.mu.Lock()
	apply(&s.doc)
	s.mu.Unlock()
	s.sched.Touch()
}

// Flush saves pending edits now.
func (s *Session) Flush() {
	s.sched.Flush()
}

// Close tears the editor down. No save starts after Close returns, and a
// save still running finishes without calling OnSaved or OnError.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.sched.Stop()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) autoSave() {
	doc := s.Document()
	if doc.Title == "" && doc.Content == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	post, err := s.saver.SaveDraft(ctx, doc)
	if s.isClosed() {
		return
	}
	if err != nil {
		if s.OnError != nil {
			s.OnError(err)
		}
		return
	}

	s.adopt(post)
	if s.OnSaved != nil {
		s.OnSaved(post)
	}
}

// Publish drops any pending auto-save, waits out one already running and
// publishes the local document as it stands.
func (s *Session) Publish(ctx context.Context) (*Post, error) {
	s.sched.Cancel()

	post, err := s.saver.Publish(ctx, s.Document())
	if err != nil {
		return nil, err
	}
	s.adopt(post)
	return post, nil
}

// adopt takes the server's id for a post created by the first save, so
// later saves update it instead of creating another.
func (s *Session) adopt(post *Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.ID == "" {
		s.doc.ID = post.ID
	}
}

func cloneDraft(d Draft) Draft {
	d.Tags = slices.Clone(d.Tags)
	return d
}
