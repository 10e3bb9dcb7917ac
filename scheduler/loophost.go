package scheduler

import (
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/rs/zerolog"
)

// LoopHost runs the scheduler on a go-eventloop Loop. Everything the
// scheduler and the reconciler touch must then be driven from loop tasks.
type LoopHost struct {
	loop   *eventloop.Loop
	logger zerolog.Logger
}

var _ Host = (*LoopHost)(nil)

func NewLoopHost(loop *eventloop.Loop, logger zerolog.Logger) *LoopHost {
	return &LoopHost{loop: loop, logger: logger}
}

func (h *LoopHost) Loop() *eventloop.Loop { return h.loop }

func (h *LoopHost) Now() time.Time { return time.Now() }

func (h *LoopHost) PostTask(fn func()) {
	if err := h.loop.Submit(fn); err != nil {
		h.logger.Error().Err(err).Msg("submit task")
	}
}

// PostMicrotask prefers the loop's microtask queue, then its internal
// priority queue, then the external task queue.
func (h *LoopHost) PostMicrotask(fn func()) {
	err := h.loop.ScheduleMicrotask(fn)
	if err == nil {
		return
	}
	h.logger.Debug().Err(err).Msg("microtask queue unavailable, using internal queue")
	if err = h.loop.SubmitInternal(fn); err == nil {
		return
	}
	h.logger.Debug().Err(err).Msg("internal queue unavailable, using task queue")
	h.PostTask(fn)
}
