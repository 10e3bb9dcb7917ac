package fiber

import (
	"errors"

	"github.com/delaneyj/fiberparty/scheduler"
)

type exitStatus uint8

const (
	rootInProgress exitStatus = iota
	rootCompleted
	rootDidNotComplete
	rootErrored
)

func (r *Reconciler) scheduleUpdateOnFiber(f *Fiber, lane Lane) {
	root := markUpdateFromFiberToRoot(f)
	if root == nil {
		r.logger.Debug().Str("component", f.componentName()).Msg("update on unmounted fiber ignored")
		return
	}
	markRootUpdated(root, lane)
	if root == r.wipRoot && r.workInProgress != nil {
		r.wipRootUpdatedLanes = mergeLanes(r.wipRootUpdatedLanes, lane)
	}
	r.ensureRootIsScheduled(root)
}

func markUpdateFromFiberToRoot(f *Fiber) *Root {
	node := f
	for node.parent != nil {
		node = node.parent
	}
	if node.tag != TagHostRoot {
		return nil
	}
	root, _ := node.stateNode.(*Root)
	return root
}

// ensureRootIsScheduled makes sure exactly one callback is scheduled for the
// root's most urgent pending lane.
func (r *Reconciler) ensureRootIsScheduled(root *Root) {
	lane := getHighestPriorityLane(root.pendingLanes)
	existing := root.callbackNode

	if lane == NoLane {
		if existing != nil {
			r.sched.CancelCallback(existing)
		}
		root.callbackNode = nil
		root.callbackPriority = NoLane
		return
	}
	if lane == root.callbackPriority {
		return
	}
	if existing != nil {
		r.sched.CancelCallback(existing)
	}

	var task *scheduler.Task
	if lane == SyncLane {
		r.logger.Debug().Str("root", root.id).Msg("schedule sync work")
		r.scheduleSyncCallback(func() { r.performSyncWorkOnRoot(root) })
		r.sched.QueueMicrotask(r.flushSyncCallbacks)
	} else {
		prio := laneToSchedulerPriority(lane)
		r.logger.Debug().Str("root", root.id).Stringer("lane", lane).Stringer("priority", prio).Msg("schedule concurrent work")
		task = r.sched.ScheduleCallback(prio, func(didTimeout bool) scheduler.Callback {
			return r.performConcurrentWorkOnRoot(root, didTimeout)
		})
	}
	root.callbackNode = task
	root.callbackPriority = lane
}

func (r *Reconciler) scheduleSyncCallback(cb func()) {
	r.syncQueue = append(r.syncQueue, cb)
}

// flushSyncCallbacks drains the sync queue, including callbacks queued while
// it runs. The guard only stops re-entry from inside a callback.
func (r *Reconciler) flushSyncCallbacks() {
	if r.flushingSyncQueue {
		return
	}
	r.flushingSyncQueue = true
	defer func() { r.flushingSyncQueue = false }()

	for len(r.syncQueue) > 0 {
		queue := r.syncQueue
		r.syncQueue = nil
		for _, cb := range queue {
			cb()
		}
	}
}

func (r *Reconciler) performSyncWorkOnRoot(root *Root) {
	// effects of the previous commit must see their destroys set before
	// this pass reads them
	r.flushPassiveEffects(root)

	lane := getHighestPriorityLane(root.pendingLanes)
	if lane != SyncLane {
		r.ensureRootIsScheduled(root)
		return
	}
	// sync updates made from here on get their own callback
	root.callbackNode = nil
	root.callbackPriority = NoLane

	status := r.renderRoot(root, lane, false)
	r.finishRender(root, lane, status)
}

func (r *Reconciler) performConcurrentWorkOnRoot(root *Root, didTimeout bool) scheduler.Callback {
	originalCallback := root.callbackNode
	if r.flushPassiveEffects(root) && root.callbackNode != originalCallback {
		return nil
	}

	lane := getHighestPriorityLane(root.pendingLanes)
	if lane == NoLane {
		if root.callbackNode == originalCallback {
			root.callbackNode = nil
			root.callbackPriority = NoLane
		}
		return nil
	}
	needSync := lane == SyncLane || didTimeout
	status := r.renderRoot(root, lane, r.timeSlicing && !needSync)

	if status != rootInProgress {
		r.finishRender(root, lane, status)
	}
	if root.callbackNode != nil && root.callbackNode == originalCallback {
		return func(didTimeout bool) scheduler.Callback {
			return r.performConcurrentWorkOnRoot(root, didTimeout)
		}
	}
	return nil
}

func (r *Reconciler) finishRender(root *Root, lane Lane, status exitStatus) {
	switch status {
	case rootCompleted:
		root.finishedWork = root.current.alternate
		root.finishedLane = lane
		root.finishedUpdatedLanes = r.wipRootUpdatedLanes
		r.wipRoot = nil
		r.wipRootRenderLane = NoLane
		r.wipRootUpdatedLanes = NoLanes
		r.commitRoot(root)
	case rootDidNotComplete:
		markRootSuspended(root, lane)
		root.callbackNode = nil
		root.callbackPriority = NoLane
		r.ensureRootIsScheduled(root)
	case rootErrored:
		root.callbackNode = nil
		root.callbackPriority = NoLane
	}
}

func (r *Reconciler) prepareFreshStack(root *Root, lane Lane) {
	r.resetRenderState()
	root.finishedWork = nil
	root.finishedLane = NoLane
	root.finishedUpdatedLanes = NoLanes
	r.workInProgress = createWorkInProgress(root.current, Props{})
	r.wipRoot = root
	r.wipRootRenderLane = lane
	r.metrics.renders.Inc()
}

func (r *Reconciler) resetRenderState() {
	r.workInProgress = nil
	r.wipRoot = nil
	r.wipRootRenderLane = NoLane
	r.wipRootUpdatedLanes = NoLanes
	r.resetContextStack()
	r.suspenseHandlers = r.suspenseHandlers[:0]
}

// renderRoot starts a fresh pass unless the same root and lane were left
// mid-way by a yield, in which case it resumes.
func (r *Reconciler) renderRoot(root *Root, lane Lane, shouldTimeSlice bool) exitStatus {
	if r.wipRoot != root || r.wipRootRenderLane != lane || r.workInProgress == nil {
		r.prepareFreshStack(root, lane)
	}

	for {
		err := r.workLoop(shouldTimeSlice)
		if err == nil {
			break
		}

		var suspended *SuspendedError
		if errors.As(err, &suspended) {
			r.metrics.suspensions.Inc()
			if r.throwAndUnwind(root, r.workInProgress, suspended.Thenable, lane) {
				continue
			}
			r.logger.Debug().Str("root", root.id).Stringer("lane", lane).Msg("suspended outside any boundary")
			r.resetRenderState()
			return rootDidNotComplete
		}

		r.metrics.renderErrors.Inc()
		ev := r.logger.Error().Err(err).Str("root", root.id).Stringer("lane", lane)
		if r.workInProgress != nil {
			ev = ev.Str("component", r.workInProgress.componentName())
		}
		ev.Msg("render aborted")
		r.resetRenderState()
		if r.onRenderError != nil {
			r.onRenderError(root, err)
		}
		return rootErrored
	}

	if r.workInProgress != nil {
		r.metrics.yields.Inc()
		return rootInProgress
	}
	return rootCompleted
}

func (r *Reconciler) workLoop(shouldTimeSlice bool) error {
	for r.workInProgress != nil {
		if shouldTimeSlice && r.sched.ShouldYield() {
			return nil
		}
		if err := r.performUnitOfWork(r.workInProgress); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) performUnitOfWork(f *Fiber) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if isContractViolation(rec) {
			r.resetRenderState()
			panic(rec)
		}
		err = &PanicError{Component: f.componentName(), Value: rec}
	}()

	next, err := r.beginWork(f, r.wipRootRenderLane)
	if err != nil {
		return err
	}
	f.memoizedProps = f.pendingProps
	if next == nil {
		r.completeUnitOfWork(f)
	} else {
		r.workInProgress = next
	}
	return nil
}

func (r *Reconciler) completeUnitOfWork(f *Fiber) {
	node := f
	for node != nil {
		r.completeWork(node)
		if node.sibling != nil {
			r.workInProgress = node.sibling
			return
		}
		node = node.parent
		r.workInProgress = node
	}
}
