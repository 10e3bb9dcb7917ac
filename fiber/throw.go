package fiber

import mapset "github.com/deckarep/golang-set/v2"

// throwAndUnwind handles a suspension raised while rendering source. It
// reports whether a boundary caught it; if so workInProgress is that
// boundary, ready to render its fallback.
func (r *Reconciler) throwAndUnwind(root *Root, source *Fiber, t Thenable, lane Lane) bool {
	boundary := r.currentSuspenseHandler()
	r.attachPingListener(root, t, lane)
	if boundary == nil {
		return false
	}
	boundary.flags |= ShouldCapture
	r.logger.Debug().
		Str("root", root.id).
		Str("component", source.componentName()).
		Stringer("lane", lane).
		Msg("suspended, showing fallback")
	r.unwindUnitOfWork(source)
	return r.workInProgress != nil
}

// attachPingListener re-marks lane on root once t settles. Each thenable
// pings a given lane at most once.
func (r *Reconciler) attachPingListener(root *Root, t Thenable, lane Lane) {
	if root.pingCache == nil {
		root.pingCache = make(map[Thenable]mapset.Set[Lane])
	}
	lanes, ok := root.pingCache[t]
	if !ok {
		lanes = mapset.NewThreadUnsafeSet[Lane]()
		root.pingCache[t] = lanes
	}
	if !lanes.Add(lane) {
		return
	}
	t.Then(func() {
		r.sched.Post(func() { r.pingSuspendedRoot(root, t, lane) })
	})
}

func (r *Reconciler) pingSuspendedRoot(root *Root, t Thenable, lane Lane) {
	delete(root.pingCache, t)
	r.logger.Debug().Str("root", root.id).Stringer("lane", lane).Msg("ping")
	markRootUpdated(root, lane)
	r.ensureRootIsScheduled(root)
}

// unwindUnitOfWork climbs from the fiber that suspended, popping whatever
// each ancestor pushed, until it reaches the capturing boundary.
func (r *Reconciler) unwindUnitOfWork(f *Fiber) {
	for node := f; node != nil; {
		if next := r.unwindWork(node); next != nil {
			next.deletions = nil
			next.flags &^= ChildDeletion
			next.subtreeFlags = NoFlags
			r.workInProgress = next
			return
		}
		parent := node.parent
		if parent != nil {
			parent.deletions = nil
			parent.subtreeFlags = NoFlags
		}
		node = parent
	}
	r.workInProgress = nil
}

func (r *Reconciler) unwindWork(f *Fiber) *Fiber {
	switch f.tag {
	case TagSuspense:
		r.popSuspenseHandler()
		if f.flags&ShouldCapture != 0 {
			f.flags = f.flags&^ShouldCapture | DidCapture
			return f
		}
	case TagContextProvider:
		r.popProvider()
	}
	return nil
}
