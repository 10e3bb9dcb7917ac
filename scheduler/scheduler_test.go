package scheduler_test

import (
	"testing"
	"time"

	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsByPriority(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	var order []string
	record := func(name string) scheduler.Callback {
		return func(bool) scheduler.Callback {
			order = append(order, name)
			return nil
		}
	}
	s.ScheduleCallback(scheduler.IdlePriority, record("idle"))
	s.ScheduleCallback(scheduler.NormalPriority, record("normal"))
	s.ScheduleCallback(scheduler.UserBlockingPriority, record("user-blocking"))
	s.ScheduleCallback(scheduler.NormalPriority, record("normal-2"))

	// one host callback for the whole batch
	assert.Equal(t, 1, host.PendingTasks())
	host.Flush()

	assert.Equal(t, []string{"user-blocking", "normal", "normal-2", "idle"}, order)
	assert.False(t, s.HasPendingWork())
}

func TestSchedulerCancel(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	ran := false
	task := s.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
		ran = true
		return nil
	})
	s.CancelCallback(task)
	s.CancelCallback(nil)
	host.Flush()

	assert.False(t, ran)
	assert.True(t, task.Cancelled())
	assert.False(t, s.HasPendingWork())
}

func TestSchedulerYieldsAndResumesContinuation(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host, scheduler.WithSliceSize(5*time.Millisecond))

	steps := 0
	var step scheduler.Callback
	step = func(bool) scheduler.Callback {
		steps++
		host.Advance(3 * time.Millisecond)
		if steps == 4 {
			return nil
		}
		return step
	}
	s.ScheduleCallback(scheduler.NormalPriority, step)

	require.True(t, host.RunNextTask())
	// 3ms is under the slice, 6ms is over it
	assert.Equal(t, 2, steps)
	assert.Equal(t, 1, host.PendingTasks())

	require.True(t, host.RunNextTask())
	assert.Equal(t, 4, steps)
	assert.False(t, s.HasPendingWork())
	assert.False(t, host.RunNextTask())
}

func TestSchedulerCancelledContinuationIsDropped(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	calls := 0
	var task *scheduler.Task
	task = s.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
		calls++
		s.CancelCallback(task)
		return func(bool) scheduler.Callback {
			calls++
			return nil
		}
	})
	host.Flush()
	assert.Equal(t, 1, calls)
}

func TestSchedulerPriorityContext(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	assert.Equal(t, scheduler.NormalPriority, s.CurrentPriority())
	s.RunWithPriority(scheduler.ImmediatePriority, func() {
		assert.Equal(t, scheduler.ImmediatePriority, s.CurrentPriority())
	})
	assert.Equal(t, scheduler.NormalPriority, s.CurrentPriority())

	var seen scheduler.Priority
	s.ScheduleCallback(scheduler.IdlePriority, func(bool) scheduler.Callback {
		seen = s.CurrentPriority()
		return nil
	})
	host.Flush()
	assert.Equal(t, scheduler.IdlePriority, seen)
	assert.Equal(t, scheduler.NormalPriority, s.CurrentPriority())
}

func TestSchedulerImmediateTimesOut(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	var immediate, normal bool
	s.ScheduleCallback(scheduler.ImmediatePriority, func(didTimeout bool) scheduler.Callback {
		immediate = didTimeout
		return nil
	})
	s.ScheduleCallback(scheduler.NormalPriority, func(didTimeout bool) scheduler.Callback {
		normal = didTimeout
		return nil
	})
	host.Flush()
	assert.True(t, immediate)
	assert.False(t, normal)
}

func TestManualHostMicrotasksDrainAfterTask(t *testing.T) {
	host := scheduler.NewManualHost()
	s := scheduler.New(host)

	var order []string
	s.Post(func() {
		order = append(order, "task-1")
		s.QueueMicrotask(func() {
			order = append(order, "micro")
			s.QueueMicrotask(func() { order = append(order, "micro-nested") })
		})
	})
	s.Post(func() { order = append(order, "task-2") })
	host.Flush()

	assert.Equal(t, []string{"task-1", "micro", "micro-nested", "task-2"}, order)
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "user-blocking", scheduler.UserBlockingPriority.String())
	assert.Equal(t, "none", scheduler.NoPriority.String())
}
