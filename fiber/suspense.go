package fiber

// suspenseState marks a Suspense fiber whose fallback is showing.
type suspenseState struct{}

var showingFallback = &suspenseState{}

// Every Suspense fiber pushes exactly one handler in begin and pops it in
// complete or unwind. A boundary showing its fallback pushes the handler
// above it, so a suspending fallback is caught further out.

func (r *Reconciler) pushSuspenseHandler(f *Fiber) {
	r.suspenseHandlers = append(r.suspenseHandlers, f)
}

func (r *Reconciler) popSuspenseHandler() {
	if n := len(r.suspenseHandlers); n > 0 {
		r.suspenseHandlers = r.suspenseHandlers[:n-1]
	}
}

func (r *Reconciler) currentSuspenseHandler() *Fiber {
	if n := len(r.suspenseHandlers); n > 0 {
		return r.suspenseHandlers[n-1]
	}
	return nil
}

// updateSuspenseComponent lays out a boundary as an Offscreen fiber holding
// the primary children, followed by a Fragment holding the fallback while
// it shows.
func (r *Reconciler) updateSuspenseComponent(wip *Fiber) *Fiber {
	current := wip.alternate
	primary := wip.pendingProps["children"]
	fallback := wip.pendingProps["fallback"]

	showFallback := wip.flags&DidCapture != 0
	wip.flags &^= DidCapture

	if showFallback {
		r.pushSuspenseHandler(r.currentSuspenseHandler())
		wip.memoizedState = showingFallback
		if current == nil {
			return mountSuspenseFallbackChildren(wip, primary, fallback)
		}
		return updateSuspenseFallbackChildren(wip, current, primary, fallback)
	}

	r.pushSuspenseHandler(wip)
	wip.memoizedState = nil
	if current == nil {
		return mountSuspensePrimaryChildren(wip, primary)
	}
	return updateSuspensePrimaryChildren(wip, current, primary)
}

func mountSuspensePrimaryChildren(wip *Fiber, primary any) *Fiber {
	offscreen := createFiberFromOffscreen(offscreenProps(OffscreenVisible, primary))
	offscreen.parent = wip
	wip.child = offscreen
	return offscreen
}

// The hidden primary is not rendered on mount. The fallback carries no
// Placement: the boundary itself is new, so its host nodes go in with it.
func mountSuspenseFallbackChildren(wip *Fiber, primary, fallback any) *Fiber {
	offscreen := createFiberFromOffscreen(offscreenProps(OffscreenHidden, primary))
	fb := createFiberFromFragment(fallback, "")
	offscreen.parent = wip
	fb.parent = wip
	offscreen.sibling = fb
	fb.index = 1
	wip.child = offscreen
	return fb
}

func updateSuspensePrimaryChildren(wip, current *Fiber, primary any) *Fiber {
	currentOffscreen := current.child
	currentFallback := currentOffscreen.sibling

	offscreen := createWorkInProgress(currentOffscreen, offscreenProps(OffscreenVisible, primary))
	offscreen.parent = wip
	offscreen.sibling = nil
	offscreen.index = 0
	if currentFallback != nil {
		wip.deletions = append(wip.deletions, currentFallback)
		wip.flags |= ChildDeletion
	}
	wip.child = offscreen
	return offscreen
}

// The hidden primary keeps its committed children untouched; only the
// fallback is rendered.
func updateSuspenseFallbackChildren(wip, current *Fiber, primary, fallback any) *Fiber {
	currentOffscreen := current.child
	currentFallback := currentOffscreen.sibling

	offscreen := createWorkInProgress(currentOffscreen, offscreenProps(OffscreenHidden, primary))
	offscreen.parent = wip
	offscreen.index = 0
	for c := offscreen.child; c != nil; c = c.sibling {
		c.parent = offscreen
	}

	var fb *Fiber
	if currentFallback != nil {
		fb = createWorkInProgress(currentFallback, Props{"children": fallback})
	} else {
		fb = createFiberFromFragment(fallback, "")
		fb.flags |= Placement
	}
	fb.parent = wip
	fb.sibling = nil
	fb.index = 1
	offscreen.sibling = fb
	wip.child = offscreen
	return fb
}

// completeSuspense flags the Offscreen child when its visibility changed in
// this pass.
func completeSuspense(wip *Fiber) {
	offscreen := wip.child
	if offscreen == nil || offscreen.tag != TagOffscreen {
		return
	}
	nextHidden := offscreen.pendingProps["mode"] == OffscreenHidden
	prevHidden := false
	if prev := offscreen.alternate; prev != nil && prev.memoizedProps != nil {
		prevHidden = prev.memoizedProps["mode"] == OffscreenHidden
	}
	// an Offscreen skipped while hidden was never begun
	offscreen.memoizedProps = offscreen.pendingProps
	if nextHidden != prevHidden {
		offscreen.flags |= Visibility
	}
}
