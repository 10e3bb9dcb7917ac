package fiber

type update struct {
	action any
	lane   Lane
	next   *update
}

// stateUpdater marks an action that computes the next state from the
// previous one. Any other action replaces the state.
type stateUpdater func(prev any) any

type updateQueue struct {
	// pending is the newest update of a circular list; pending.next is the oldest.
	pending  *update
	dispatch func(action any)
}

func newUpdate(action any, lane Lane) *update {
	return &update{action: action, lane: lane}
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{}
}

func (q *updateQueue) enqueue(u *update) {
	if q.pending == nil {
		u.next = u
	} else {
		u.next = q.pending.next
		q.pending.next = u
	}
	q.pending = u
}

// rootQueue is the host root's queue. shared is common to both root fibers;
// the base fields belong to each buffer so an abandoned pass loses nothing.
type rootQueue struct {
	shared    *updateQueue
	baseState any
	baseQueue *update
}

func cloneRootQueue(q *rootQueue) *rootQueue {
	return &rootQueue{shared: q.shared, baseState: q.baseState, baseQueue: q.baseQueue}
}

// mergeUpdateLists appends the pending circular list after base and returns
// the new last update.
func mergeUpdateLists(base, pending *update) *update {
	if base == nil {
		return pending
	}
	if pending == nil {
		return base
	}
	baseFirst := base.next
	pendingFirst := pending.next
	base.next = pendingFirst
	pending.next = baseFirst
	return pending
}

type processResult struct {
	memoizedState any
	baseState     any
	baseQueue     *update
}

func applyAction(state, action any) any {
	if fn, ok := action.(stateUpdater); ok {
		return fn(state)
	}
	return action
}

// processUpdateQueue folds the updates whose lanes belong to renderLane over
// baseState. The first skipped update fixes the base state for the next
// pass, and every update from that point on is kept for replay; updates
// already applied are kept at NoLane so any later pass applies them again.
func processUpdateQueue(baseState any, pending *update, renderLane Lane) processResult {
	result := processResult{memoizedState: baseState, baseState: baseState}
	if pending == nil {
		return result
	}

	newState, newBaseState := baseState, baseState
	var newBaseFirst, newBaseLast *update
	first := pending.next
	for u := first; ; {
		if !isSubsetOfLanes(renderLane, u.lane) {
			clone := newUpdate(u.action, u.lane)
			if newBaseFirst == nil {
				newBaseFirst, newBaseLast = clone, clone
				newBaseState = newState
			} else {
				newBaseLast.next = clone
				newBaseLast = clone
			}
		} else {
			if newBaseLast != nil {
				clone := newUpdate(u.action, NoLane)
				newBaseLast.next = clone
				newBaseLast = clone
			}
			newState = applyAction(newState, u.action)
		}

		u = u.next
		if u == first {
			break
		}
	}

	if newBaseLast == nil {
		newBaseState = newState
	} else {
		newBaseLast.next = newBaseFirst
	}

	result.memoizedState = newState
	result.baseState = newBaseState
	result.baseQueue = newBaseLast
	return result
}
