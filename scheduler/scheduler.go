// Package scheduler is a cooperative, priority-ordered task scheduler. Tasks
// run on a single host thread in time slices; a task that has more to do
// returns a continuation instead of blocking the host.
package scheduler

import (
	"container/heap"
	"time"

	"github.com/rs/zerolog"
)

type Scheduler struct {
	host   Host
	logger zerolog.Logger

	sliceSize  time.Duration
	sliceStart time.Time

	queue  taskQueue
	nextID uint64

	currentTask     *Task
	currentPriority Priority

	hostCallbackScheduled bool
	performingWork        bool
}

func New(host Host, opts ...Option) *Scheduler {
	o := resolveOptions(opts)
	return &Scheduler{
		host:            host,
		logger:          o.logger,
		sliceSize:       o.sliceSize,
		currentPriority: NormalPriority,
	}
}

func (s *Scheduler) Now() time.Time { return s.host.Now() }

// ScheduleCallback queues cb at priority p. The returned task is the handle
// used for cancellation.
func (s *Scheduler) ScheduleCallback(p Priority, cb Callback) *Task {
	if p == NoPriority {
		p = NormalPriority
	}
	now := s.host.Now()
	s.nextID++
	t := &Task{
		id:             s.nextID,
		callback:       cb,
		priority:       p,
		startTime:      now,
		expirationTime: now.Add(p.timeout()),
	}
	heap.Push(&s.queue, t)
	s.logger.Trace().Uint64("task", t.id).Stringer("priority", p).Msg("scheduled")

	if !s.hostCallbackScheduled && !s.performingWork {
		s.requestHostCallback()
	}
	return t
}

// CancelCallback drops the task's callback. The task stays in the queue until
// it reaches the front and is discarded there.
func (s *Scheduler) CancelCallback(t *Task) {
	if t == nil {
		return
	}
	t.callback = nil
	t.cancelled = true
	s.logger.Trace().Uint64("task", t.id).Msg("cancelled")
}

// ShouldYield reports whether the current slice is used up.
func (s *Scheduler) ShouldYield() bool {
	return s.host.Now().Sub(s.sliceStart) >= s.sliceSize
}

func (s *Scheduler) CurrentPriority() Priority { return s.currentPriority }

// RunWithPriority runs fn with p as the ambient priority.
func (s *Scheduler) RunWithPriority(p Priority, fn func()) {
	prev := s.currentPriority
	s.currentPriority = p
	defer func() { s.currentPriority = prev }()
	fn()
}

// QueueMicrotask runs fn after the current host task, before the next one.
func (s *Scheduler) QueueMicrotask(fn func()) { s.host.PostMicrotask(fn) }

// Post hands fn to the host as a plain task. It is the way back onto the
// scheduler's thread for code running elsewhere.
func (s *Scheduler) Post(fn func()) { s.host.PostTask(fn) }

// HasPendingWork reports whether any live task is queued.
func (s *Scheduler) HasPendingWork() bool {
	for _, t := range s.queue {
		if t.callback != nil {
			return true
		}
	}
	return false
}

func (s *Scheduler) requestHostCallback() {
	s.hostCallbackScheduled = true
	s.host.PostTask(s.flushWork)
}

func (s *Scheduler) flushWork() {
	s.hostCallbackScheduled = false
	s.performingWork = true
	s.sliceStart = s.host.Now()
	prevPriority := s.currentPriority

	defer func() {
		s.currentTask = nil
		s.currentPriority = prevPriority
		s.performingWork = false
		if s.queue.peek() != nil && !s.hostCallbackScheduled {
			s.requestHostCallback()
		}
	}()

	s.workLoop()
}

func (s *Scheduler) workLoop() {
	for t := s.queue.peek(); t != nil; t = s.queue.peek() {
		now := s.host.Now()
		if t.expirationTime.After(now) && s.ShouldYield() {
			s.logger.Trace().Uint64("task", t.id).Msg("yield")
			return
		}

		cb := t.callback
		if cb == nil {
			heap.Pop(&s.queue)
			continue
		}
		t.callback = nil
		s.currentTask = t
		s.currentPriority = t.priority

		next := cb(!t.expirationTime.After(now))

		if next != nil && !t.cancelled {
			t.callback = next
			continue
		}
		if t.index >= 0 {
			heap.Remove(&s.queue, t.index)
		}
	}
}
