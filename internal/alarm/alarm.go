// Package alarm provides named, cancellable one-shot wake-ups. Scheduling
// under an existing name replaces the earlier wake-up; cancellation is by
// exact name or by prefix. Callbacks run on their own goroutine.
package alarm

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	at    time.Time
}

// Scheduler owns a set of named pending wake-ups.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*entry
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string]*entry)}
}

// Schedule registers fn to run at the given time, replacing any wake-up
// already registered under name. A time at or before now fires immediately.
func (s *Scheduler) Schedule(name string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[name]; ok {
		old.timer.Stop()
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	e := &entry{at: at}
	e.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A replacement may have raced the firing; only the current entry
		// for this name gets to run.
		if cur, ok := s.pending[name]; ok && cur == e {
			delete(s.pending, name)
		} else {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		fn()
	})
	s.pending[name] = e
}

// Clear cancels the named wake-up, reporting whether one existed.
func (s *Scheduler) Clear(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[name]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, name)
	return true
}

// ClearPrefix cancels every wake-up whose name starts with prefix and
// returns how many were cancelled.
func (s *Scheduler) ClearPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for name, e := range s.pending {
		if strings.HasPrefix(name, prefix) {
			e.timer.Stop()
			delete(s.pending, name)
			n++
		}
	}
	return n
}

// Pending returns a snapshot of the registered wake-ups and their deadlines.
func (s *Scheduler) Pending() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.pending))
	for name, e := range s.pending {
		out[name] = e.at
	}
	return out
}

// Stop cancels every pending wake-up.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, name)
	}
}
