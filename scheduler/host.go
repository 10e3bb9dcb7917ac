package scheduler

import (
	"sync"
	"time"
)

// Host is the environment the scheduler runs on: a clock, a macrotask queue
// and a microtask queue that drains after each macrotask.
type Host interface {
	Now() time.Time
	PostTask(fn func())
	PostMicrotask(fn func())
}

// ManualHost is a deterministic Host. Nothing runs until the owner drives it
// with Flush, RunNextTask or FlushMicrotasks, and time only moves on Advance.
// Posting is safe from any goroutine; driving is not.
type ManualHost struct {
	mu         sync.Mutex
	now        time.Time
	tasks      []func()
	microtasks []func()
}

var _ Host = (*ManualHost)(nil)

func NewManualHost() *ManualHost {
	return &ManualHost{now: time.Unix(0, 0)}
}

func (h *ManualHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *ManualHost) Advance(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	h.mu.Unlock()
}

func (h *ManualHost) PostTask(fn func()) {
	h.mu.Lock()
	h.tasks = append(h.tasks, fn)
	h.mu.Unlock()
}

func (h *ManualHost) PostMicrotask(fn func()) {
	h.mu.Lock()
	h.microtasks = append(h.microtasks, fn)
	h.mu.Unlock()
}

func (h *ManualHost) PendingTasks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tasks)
}

func (h *ManualHost) PendingMicrotasks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.microtasks)
}

// FlushMicrotasks runs queued microtasks, including any they queue, and
// returns how many ran.
func (h *ManualHost) FlushMicrotasks() int {
	ran := 0
	for {
		h.mu.Lock()
		if len(h.microtasks) == 0 {
			h.mu.Unlock()
			return ran
		}
		fn := h.microtasks[0]
		h.microtasks = h.microtasks[1:]
		h.mu.Unlock()

		fn()
		ran++
	}
}

// RunNextTask runs the oldest macrotask followed by the microtasks it left
// behind. It reports false when there was nothing to run.
func (h *ManualHost) RunNextTask() bool {
	h.mu.Lock()
	if len(h.tasks) == 0 {
		h.mu.Unlock()
		return false
	}
	fn := h.tasks[0]
	h.tasks = h.tasks[1:]
	h.mu.Unlock()

	fn()
	h.FlushMicrotasks()
	return true
}

// Flush drains microtasks and then macrotasks until both queues are empty.
func (h *ManualHost) Flush() {
	h.FlushMicrotasks()
	for h.RunNextTask() {
	}
}
