// Package fiber is an incremental UI reconciler. Components describe trees
// of elements; the reconciler diffs each new description against the last
// committed one on a double-buffered fiber tree, in prioritized and
// interruptible passes, and applies the minimal set of mutations through a
// HostConfig.
package fiber

import (
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Reconciler owns the render state for every root created from it. All of
// its methods, and every Setter it hands out, must be called from the
// scheduler's thread.
type Reconciler struct {
	host    HostConfig
	sched   *scheduler.Scheduler
	logger  zerolog.Logger
	metrics *metrics

	timeSlicing   bool
	onCommit      func(*Root)
	onRenderError func(*Root, error)

	workInProgress    *Fiber
	wipRoot           *Root
	wipRootRenderLane Lane

	// lanes updated on the wip root after its pass started
	wipRootUpdatedLanes Lanes

	syncQueue         []func()
	flushingSyncQueue bool

	inTransition bool

	suspenseHandlers []*Fiber
	contextStack     []contextFrame
}

type Option func(*Reconciler)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Reconciler) { r.metrics = newMetrics(reg) }
}

// WithTimeSlicing turns yielding on or off for non-sync lanes. It is on by
// default.
func WithTimeSlicing(enabled bool) Option {
	return func(r *Reconciler) { r.timeSlicing = enabled }
}

// WithOnCommit registers a function called after each commit.
func WithOnCommit(fn func(*Root)) Option {
	return func(r *Reconciler) { r.onCommit = fn }
}

// WithOnRenderError registers a function told about every aborted pass.
func WithOnRenderError(fn func(*Root, error)) Option {
	return func(r *Reconciler) { r.onRenderError = fn }
}

func New(host HostConfig, sched *scheduler.Scheduler, opts ...Option) *Reconciler {
	r := &Reconciler{
		host:        host,
		sched:       sched,
		logger:      zerolog.Nop(),
		timeSlicing: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	return r
}

func (r *Reconciler) Scheduler() *scheduler.Scheduler { return r.sched }

// requestUpdateLane picks the lane for a new update from the ambient
// transition flag, else from the scheduler's current priority.
func (r *Reconciler) requestUpdateLane() Lane {
	if r.inTransition {
		return TransitionLane
	}
	if lane := schedulerPriorityToLane(r.sched.CurrentPriority()); lane != NoLane {
		return lane
	}
	return DefaultLane
}

// FlushSync runs fn at immediate priority and commits the sync work it
// caused before returning.
func (r *Reconciler) FlushSync(fn func()) {
	r.sched.RunWithPriority(scheduler.ImmediatePriority, fn)
	r.flushSyncCallbacks()
}

// StartTransition runs fn so that its updates use the transition lane.
func (r *Reconciler) StartTransition(fn func()) {
	prev := r.inTransition
	r.inTransition = true
	defer func() { r.inTransition = prev }()
	fn()
}
