// Package sched provides the coalescing timers behind debounced field edits.
//
// Each (entity id, field) key owns at most one pending callback: scheduling
// again within the window replaces the callback and pushes the deadline out,
// so only the final value of a burst of edits is ever flushed.
package sched

import (
	"sync"
	"time"
)

// Default debounce windows.
const (
	TextWindow   = 500 * time.Millisecond
	SliderWindow = 1000 * time.Millisecond
)

// Key identifies one debounced field.
type Key struct {
	EntityID string
	Field    string
}

type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Clock abstracts timer creation so tests can advance virtual time.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

type realTimer struct{ *time.Timer }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, fn)}
}

type entry struct {
	timer Timer
	fn    func()
}

type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	pending map[Key]*entry
	stopped bool
}

func New() *Scheduler {
	return NewWithClock(realClock{})
}

func NewWithClock(c Clock) *Scheduler {
	return &Scheduler{clock: c, pending: map[Key]*entry{}}
}

// Schedule arms (or re-arms) the key's timer. A pending callback for the same
// key is replaced, not queued: the earlier edit never reaches the network.
func (s *Scheduler) Schedule(k Key, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if e, ok := s.pending[k]; ok {
		e.fn = fn
		e.timer.Reset(d)
		return
	}
	e := &entry{fn: fn}
	e.timer = s.clock.AfterFunc(d, func() { s.fire(k, e) })
	s.pending[k] = e
}

func (s *Scheduler) fire(k Key, e *entry) {
	s.mu.Lock()
	cur, ok := s.pending[k]
	if !ok || cur != e || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.pending, k)
	fn := cur.fn
	s.mu.Unlock()
	fn()
}

// Cancel drops the pending callback for the key, if any.
func (s *Scheduler) Cancel(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[k]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, k)
	return true
}

// Flush runs the pending callback for the key immediately.
func (s *Scheduler) Flush(k Key) bool {
	s.mu.Lock()
	e, ok := s.pending[k]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(s.pending, k)
	fn := e.fn
	s.mu.Unlock()
	fn()
	return true
}

// Pending reports whether the key has an armed timer.
func (s *Scheduler) Pending(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[k]
	return ok
}

// Stop cancels every pending timer and refuses further scheduling. Views call
// this on teardown so no orphaned write fires after the view is gone.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for k, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, k)
	}
}
