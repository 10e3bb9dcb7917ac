package fiber

import "fmt"

// beginWork renders one fiber and returns its first child, or nil when the
// fiber has nothing below it to visit.
func (r *Reconciler) beginWork(wip *Fiber, lane Lane) (*Fiber, error) {
	switch wip.tag {
	case TagHostRoot:
		return r.updateHostRoot(wip, lane), nil
	case TagHostComponent:
		markRef(wip.alternate, wip)
		r.reconcileChildren(wip, wip.pendingProps["children"])
		return wip.child, nil
	case TagHostText:
		return nil, nil
	case TagFunctionComponent:
		children, err := r.renderWithHooks(wip, lane)
		if err != nil {
			return nil, err
		}
		r.reconcileChildren(wip, children)
		return wip.child, nil
	case TagFragment, TagOffscreen:
		r.reconcileChildren(wip, wip.pendingProps["children"])
		return wip.child, nil
	case TagContextProvider:
		p := wip.typ.(*providerType)
		r.pushProvider(p.context, wip.pendingProps["value"])
		r.reconcileChildren(wip, wip.pendingProps["children"])
		return wip.child, nil
	case TagSuspense:
		return r.updateSuspenseComponent(wip), nil
	}
	return nil, fmt.Errorf("%w: no begin phase for %s", ErrUnknownElementType, wip.tag)
}

func (r *Reconciler) updateHostRoot(wip *Fiber, lane Lane) *Fiber {
	current := wip.alternate
	cq := current.updateQueue.(*rootQueue)
	q := cloneRootQueue(cq)
	wip.updateQueue = q

	if pending := q.shared.pending; pending != nil {
		q.shared.pending = nil
		q.baseQueue = mergeUpdateLists(q.baseQueue, pending)
		cq.baseQueue = q.baseQueue
	}
	if q.baseQueue != nil {
		res := processUpdateQueue(q.baseState, q.baseQueue, lane)
		wip.memoizedState = res.memoizedState
		q.baseState = res.baseState
		q.baseQueue = res.baseQueue
	}

	r.reconcileChildren(wip, wip.memoizedState)
	return wip.child
}

func (r *Reconciler) reconcileChildren(wip *Fiber, children any) {
	if current := wip.alternate; current != nil {
		c := childReconciler{trackEffects: true, logger: r.logger}
		wip.child = c.reconcile(wip, current.child, children)
	} else {
		// a new subtree is inserted whole by its parent
		c := childReconciler{trackEffects: false, logger: r.logger}
		wip.child = c.reconcile(wip, nil, children)
	}
}

func markRef(current, wip *Fiber) {
	if (current == nil && wip.ref != nil) || (current != nil && current.ref != wip.ref) {
		wip.flags |= RefEffect
	}
}
