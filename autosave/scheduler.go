// Package autosave keeps an editor's copy of a post in step with the blog
// API, saving it once the author stops typing.
package autosave

import (
	"sync"
	"time"
)

// Scheduler debounces edits into saves. Each Touch restarts the quiet
// period; the save function runs once the period passes with no further
// Touch. At most one save runs at a time. A quiet period that ends while a
// save is running queues exactly one follow-up save.
type Scheduler struct {
	quiet time.Duration
	save  func()

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	gen     uint64
	running bool
	dirty   bool
	stopped bool
}

func NewScheduler(quiet time.Duration, save func()) *Scheduler {
	s := &Scheduler{quiet: quiet, save: save}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Touch records an edit. It is a no-op after Stop.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.disarm()
	gen := s.gen
	s.timer = time.AfterFunc(s.quiet, func() { s.expire(gen) })
}

// Pending reports whether an edit is waiting for its quiet period to end.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Flush runs a pending save now instead of waiting out the quiet period. It
// returns once the save has run, or at once if a save was already running
// (the pending edit then rides on that save's follow-up).
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.disarm()
	s.run()
}

// Cancel drops a pending save and any queued follow-up, then waits for a
// running save to finish. Later Touch calls schedule saves as usual.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm()
	s.dirty = false
	for s.running {
		s.idle.Wait()
	}
}

// Stop drops pending work like Cancel and turns every later Touch into a
// no-op. A save already running is allowed to finish; Stop does not wait
// for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.disarm()
	s.dirty = false
}

// disarm stops the timer. Bumping gen turns a callback that already left
// the timer but has not taken the lock into a no-op.
func (s *Scheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.run()
}

// run must be called with s.mu held and releases it.
func (s *Scheduler) run() {
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.dirty = true
		s.mu.Unlock()
		return
	}

	s.running = true
	for {
		s.mu.Unlock()
		s.save()
		s.mu.Lock()
		if !s.dirty || s.stopped {
			break
		}
		s.dirty = false
	}
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}
