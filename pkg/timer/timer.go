// Package timer provides scheduled callbacks with cancellable handles.
//
// [System] is backed by [time.AfterFunc]. [Manual] runs callbacks only when
// its virtual clock is advanced, which makes delay-driven logic testable.
package timer

import (
	"sort"
	"sync"
	"time"
)

type Handle interface {
	// Stop cancels the callback. It reports false if the callback has
	// already run or was stopped before.
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}

type System struct{}

func (System) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// A Manual is a virtual-time [Scheduler]. Callbacks run synchronously in
// the goroutine calling [Manual.Advance], in due order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTask
}

type manualTask struct {
	m    *Manual
	due  time.Duration
	seq  int
	f    func()
	done bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + d, seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the virtual clock forward by d and runs every callback due
// at or before the new time. Callbacks scheduled while advancing run too if
// they fall due inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.f()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of callbacks not yet run or stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) popDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due == m.pending[j].due {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].due < m.pending[j].due
	})

	if len(m.pending) == 0 || m.pending[0].due > target {
		return nil
	}
	t := m.pending[0]
	m.pending = m.pending[1:]
	t.done = true
	m.now = t.due
	return t
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			break
		}
	}
	return true
}
