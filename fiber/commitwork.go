package fiber

import (
	"time"

	"github.com/delaneyj/fiberparty/scheduler"
)

// commitRoot applies root.finishedWork to the host and makes it current.
func (r *Reconciler) commitRoot(root *Root) {
	finished := root.finishedWork
	if finished == nil {
		return
	}
	lane := root.finishedLane
	start := time.Now()

	root.finishedWork = nil
	root.finishedLane = NoLane
	markRootFinished(root, lane)
	// updates that landed mid-pass may have missed fibers already rendered
	markRootUpdated(root, root.finishedUpdatedLanes)
	root.finishedUpdatedLanes = NoLanes

	all := finished.flags | finished.subtreeFlags
	if all&PassiveMask != 0 && !root.passiveFlushScheduled {
		root.passiveFlushScheduled = true
		r.sched.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
			r.flushPassiveEffects(root)
			return nil
		})
	}
	if all&(MutationMask|PassiveMask) != 0 {
		r.commitMutationEffects(root, finished)
	}
	root.current = finished

	elapsed := time.Since(start)
	r.metrics.commits.Inc()
	r.metrics.commitDuration.Observe(elapsed.Seconds())
	r.logger.Debug().
		Str("root", root.id).
		Stringer("lane", lane).
		Dur("took", elapsed).
		Msg("commit")

	if r.onCommit != nil {
		r.onCommit(root)
	}
	r.ensureRootIsScheduled(root)
}

// commitMutationEffects walks children before their parent, skipping
// subtrees with nothing to apply.
func (r *Reconciler) commitMutationEffects(root *Root, f *Fiber) {
	if f.subtreeFlags&(MutationMask|PassiveMask) != 0 {
		for child := f.child; child != nil; child = child.sibling {
			r.commitMutationEffects(root, child)
		}
		f.subtreeFlags = NoFlags
	}
	r.commitMutationEffectsOnFiber(root, f)
}

func (r *Reconciler) commitMutationEffectsOnFiber(root *Root, f *Fiber) {
	flags := f.flags

	if flags&Placement != 0 {
		r.commitPlacement(root, f)
		f.flags &^= Placement
	}
	if flags&Update != 0 {
		if payload, ok := f.updateQueue.(UpdatePayload); ok && isHostTag(f.tag) {
			r.host.CommitUpdate(f.stateNode, payload)
		}
		f.flags &^= Update
	}
	if flags&ChildDeletion != 0 {
		for _, d := range f.deletions {
			r.commitDeletion(root, d)
		}
		f.deletions = nil
		f.flags &^= ChildDeletion
	}
	if flags&PassiveEffect != 0 {
		r.commitPassiveEffect(root, f)
		f.flags &^= PassiveEffect
	}
	if flags&RefEffect != 0 {
		commitRef(f)
		f.flags &^= RefEffect
	}
	if flags&Visibility != 0 {
		hidden := f.memoizedProps["mode"] == OffscreenHidden
		r.hideOrUnhideAllChildren(f, hidden)
		f.flags &^= Visibility
	}
}

func (r *Reconciler) commitPlacement(root *Root, f *Fiber) {
	parent := getHostParent(root, f)
	before := getHostSibling(f)
	r.insertOrAppendPlacementNode(f, before, parent)
}

func getHostParent(root *Root, f *Fiber) Container {
	for p := f.parent; p != nil; p = p.parent {
		switch p.tag {
		case TagHostComponent:
			return p.stateNode
		case TagHostRoot:
			return root.container
		}
	}
	return root.container
}

// getHostSibling finds the first host node after f that is already in place,
// searching later siblings and their descendants, then the siblings of
// non-host ancestors.
func getHostSibling(f *Fiber) Instance {
	node := f
siblings:
	for {
		for node.sibling == nil {
			p := node.parent
			if p == nil || isHostTag(p.tag) || p.tag == TagHostRoot {
				return nil
			}
			node = p
		}
		node.sibling.parent = node.parent
		node = node.sibling

		for !isHostTag(node.tag) {
			if node.flags&Placement != 0 || node.child == nil {
				continue siblings
			}
			node.child.parent = node
			node = node.child
		}
		if node.flags&Placement == 0 {
			return node.stateNode
		}
	}
}

func (r *Reconciler) insertOrAppendPlacementNode(f *Fiber, before Instance, parent Container) {
	if isHostTag(f.tag) {
		if before != nil {
			r.host.InsertChildToContainer(f.stateNode, parent, before)
		} else {
			r.host.AppendChildToContainer(f.stateNode, parent)
		}
		return
	}
	for child := f.child; child != nil; child = child.sibling {
		r.insertOrAppendPlacementNode(child, before, parent)
	}
}

// commitDeletion unmounts the subtree rooted at deleted: effects are queued
// for destruction, refs detached, and its top-level host nodes removed.
func (r *Reconciler) commitDeletion(root *Root, deleted *Fiber) {
	var hostNodes []Instance
	var visit func(f *Fiber, insideHost bool)
	visit = func(f *Fiber, insideHost bool) {
		switch f.tag {
		case TagHostComponent:
			if f.ref != nil {
				f.ref.Current = nil
			}
			if !insideHost {
				hostNodes = append(hostNodes, f.stateNode)
			}
		case TagHostText:
			if !insideHost {
				hostNodes = append(hostNodes, f.stateNode)
			}
		case TagFunctionComponent:
			if q, ok := f.updateQueue.(*effectQueue); ok {
				root.pendingPassiveEffects.unmount = appendEffects(root.pendingPassiveEffects.unmount, q)
			}
		}
		for child := f.child; child != nil; child = child.sibling {
			visit(child, insideHost || isHostTag(f.tag))
		}
	}
	visit(deleted, false)

	parent := getHostParent(root, deleted)
	for _, n := range hostNodes {
		r.host.RemoveChild(n, parent)
	}
	detachFiber(deleted)
}

func detachFiber(f *Fiber) {
	f.parent = nil
	f.child = nil
	if alt := f.alternate; alt != nil {
		alt.parent = nil
		alt.child = nil
	}
}

func (r *Reconciler) commitPassiveEffect(root *Root, f *Fiber) {
	if f.tag != TagFunctionComponent {
		return
	}
	if q, ok := f.updateQueue.(*effectQueue); ok {
		root.pendingPassiveEffects.update = appendEffects(root.pendingPassiveEffects.update, q)
	}
}

func appendEffects(dst []*effect, q *effectQueue) []*effect {
	if q == nil || q.lastEffect == nil {
		return dst
	}
	first := q.lastEffect.next
	e := first
	for {
		dst = append(dst, e)
		e = e.next
		if e == first {
			return dst
		}
	}
}

func commitRef(f *Fiber) {
	if current := f.alternate; current != nil && current.ref != nil && current.ref != f.ref {
		current.ref.Current = nil
	}
	if f.ref != nil && isHostTag(f.tag) {
		f.ref.Current = f.stateNode
	}
}

// hideOrUnhideAllChildren toggles the top-level host nodes inside an
// Offscreen fiber. A nested Offscreen that is itself hidden stays hidden.
func (r *Reconciler) hideOrUnhideAllChildren(offscreen *Fiber, hidden bool) {
	var walk func(f *Fiber)
	walk = func(f *Fiber) {
		for c := f.child; c != nil; c = c.sibling {
			switch c.tag {
			case TagHostComponent:
				if hidden {
					r.host.HideInstance(c.stateNode)
				} else {
					r.host.UnhideInstance(c.stateNode, c.memoizedProps)
				}
			case TagHostText:
				if hidden {
					r.host.HideTextInstance(c.stateNode)
				} else {
					content, _ := c.memoizedProps["content"].(string)
					r.host.UnhideTextInstance(c.stateNode, content)
				}
			case TagOffscreen:
				if !hidden && c.memoizedProps["mode"] == OffscreenHidden {
					continue
				}
				walk(c)
			default:
				walk(c)
			}
		}
	}
	walk(offscreen)
}

// flushPassiveEffects runs every queued destroy before any create. It
// reports whether there was anything to run.
func (r *Reconciler) flushPassiveEffects(root *Root) bool {
	root.passiveFlushScheduled = false
	pending := root.pendingPassiveEffects
	if len(pending.unmount) == 0 && len(pending.update) == 0 {
		return false
	}
	root.pendingPassiveEffects = pendingPassiveEffects{}

	for _, e := range pending.unmount {
		if e.tag&HookPassive != 0 {
			destroy := e.destroy
			e.destroy = nil
			r.safeCall("destroy", destroy)
		}
	}
	for _, e := range pending.update {
		if e.tag&(HookPassive|HookHasEffect) == HookPassive|HookHasEffect {
			destroy := e.destroy
			e.destroy = nil
			r.safeCall("destroy", destroy)
		}
	}
	for _, e := range pending.update {
		if e.tag&(HookPassive|HookHasEffect) == HookPassive|HookHasEffect {
			e.destroy = r.safeCreate(e.create)
		}
	}

	r.logger.Debug().
		Str("root", root.id).
		Int("unmounted", len(pending.unmount)).
		Int("updated", len(pending.update)).
		Msg("passive effects flushed")
	r.ensureRootIsScheduled(root)
	r.flushSyncCallbacks()
	return true
}

func (r *Reconciler) safeCall(phase string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Str("phase", phase).Msg("effect panicked")
		}
	}()
	fn()
}

func (r *Reconciler) safeCreate(create EffectFunc) (destroy func()) {
	if create == nil {
		return nil
	}
	r.safeCall("create", func() { destroy = create() })
	return destroy
}
