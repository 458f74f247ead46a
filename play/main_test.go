package play

import (
	"sync"
	"testing"
	"time"
)

const testTransition = 300 * time.Millisecond

type pendingCall struct {
	f       func()
	stopped bool
	done    bool
}

// manualScheduler queues completions until the test advances the clock.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*pendingCall
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) func() bool {
	c := &pendingCall{f: f}

	s.mu.Lock()
	s.pending = append(s.pending, c)
	s.mu.Unlock()

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()

		if c.done || c.stopped {
			return false
		}
		c.stopped = true
		return true
	}
}

// Advance runs the queued calls which were not stopped and returns how many ran.
func (s *manualScheduler) Advance() int {
	return s.run(false)
}

// Race runs every queued call, stopped or not, as if the timers fired before being stopped.
func (s *manualScheduler) Race() int {
	return s.run(true)
}

func (s *manualScheduler) run(ignoreStop bool) int {
	s.mu.Lock()
	calls := s.pending
	s.pending = nil
	s.mu.Unlock()

	var n int
	for _, c := range calls {
		s.mu.Lock()
		run := !c.done && (ignoreStop || !c.stopped)
		c.done = true
		s.mu.Unlock()

		if run {
			c.f()
			n++
		}
	}
	return n
}

func (s *manualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// scriptedRand returns the values in order, modulo n.
type scriptedRand struct {
	values []int
	calls  int
}

func (r *scriptedRand) IntN(n int) int {
	v := r.values[r.calls%len(r.values)]
	r.calls++
	return v % n
}

// triggerRecorder registers itself for the names and records every call.
type triggerRecorder struct {
	mu       sync.Mutex
	triggers []Trigger
}

func (r *triggerRecorder) bind(t *testing.T, d *Document, names ...string) {
	t.Helper()
	for _, name := range names {
		d.SetFunction(name, r.record)
	}
}

func (r *triggerRecorder) record(t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.triggers = append(r.triggers, t)
}

func (r *triggerRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, t := range r.triggers {
		out = append(out, t.Name)
	}
	return out
}
