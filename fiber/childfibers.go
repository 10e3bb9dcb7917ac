package fiber

import "github.com/rs/zerolog"

// childReconciler diffs a fiber's previous children against a new children
// description. Without effect tracking (first mount of a subtree) nothing is
// flagged: the parent is inserted whole.
type childReconciler struct {
	trackEffects bool
	logger       zerolog.Logger
}

func (c childReconciler) reconcile(returnFiber, currentFirstChild *Fiber, newChild any) *Fiber {
	if el, ok := newChild.(*Element); ok && el.Type == Fragment && el.Key == "" {
		newChild = el.Props["children"]
	}

	switch nc := newChild.(type) {
	case *Element:
		return c.placeSingleChild(c.reconcileSingleElement(returnFiber, currentFirstChild, nc))
	case nil, bool:
	default:
		if children, ok := childSlice(newChild); ok {
			return c.reconcileChildrenArray(returnFiber, currentFirstChild, children)
		}
		if text, ok := textContent(newChild); ok {
			return c.placeSingleChild(c.reconcileSingleTextNode(returnFiber, currentFirstChild, text))
		}
	}

	c.deleteRemainingChildren(returnFiber, currentFirstChild)
	return nil
}

func (c childReconciler) deleteChild(returnFiber, child *Fiber) {
	if !c.trackEffects {
		return
	}
	returnFiber.deletions = append(returnFiber.deletions, child)
	returnFiber.flags |= ChildDeletion
}

func (c childReconciler) deleteRemainingChildren(returnFiber, currentFirstChild *Fiber) {
	if !c.trackEffects {
		return
	}
	for child := currentFirstChild; child != nil; child = child.sibling {
		c.deleteChild(returnFiber, child)
	}
}

func useFiber(f *Fiber, pendingProps Props) *Fiber {
	clone := createWorkInProgress(f, pendingProps)
	clone.index = 0
	clone.sibling = nil
	return clone
}

func (c childReconciler) reconcileSingleElement(returnFiber, currentFirstChild *Fiber, el *Element) *Fiber {
	for child := currentFirstChild; child != nil; {
		if child.key != el.Key {
			c.deleteChild(returnFiber, child)
			child = child.sibling
			continue
		}
		if child.typ == el.Type {
			existing := useFiber(child, el.Props)
			existing.parent = returnFiber
			existing.ref = el.Ref
			c.deleteRemainingChildren(returnFiber, child.sibling)
			return existing
		}
		c.deleteRemainingChildren(returnFiber, child)
		break
	}

	var f *Fiber
	if el.Type == Fragment {
		f = createFiberFromFragment(el.Props["children"], el.Key)
	} else {
		f = createFiberFromElement(el)
	}
	f.parent = returnFiber
	return f
}

func (c childReconciler) reconcileSingleTextNode(returnFiber, currentFirstChild *Fiber, content string) *Fiber {
	if currentFirstChild != nil && currentFirstChild.tag == TagHostText {
		existing := useFiber(currentFirstChild, Props{"content": content})
		existing.parent = returnFiber
		c.deleteRemainingChildren(returnFiber, currentFirstChild.sibling)
		return existing
	}
	c.deleteRemainingChildren(returnFiber, currentFirstChild)
	f := createFiberFromText(content)
	f.parent = returnFiber
	return f
}

func (c childReconciler) placeSingleChild(f *Fiber) *Fiber {
	if c.trackEffects && f.alternate == nil {
		f.flags |= Placement
	}
	return f
}

// childKey separates explicit keys from positions, so key "1" never
// matches the unkeyed child at index 1.
type childKey struct {
	key   string
	index int
}

func fiberMapKey(f *Fiber) childKey {
	if f.key != "" {
		return childKey{key: f.key, index: -1}
	}
	return childKey{index: f.index}
}

func elementMapKey(key string, index int) childKey {
	if key != "" {
		return childKey{key: key, index: -1}
	}
	return childKey{index: index}
}

func (c childReconciler) reconcileChildrenArray(returnFiber, currentFirstChild *Fiber, newChildren []any) *Fiber {
	existing := make(map[childKey]*Fiber)
	for child := currentFirstChild; child != nil; child = child.sibling {
		mk := fiberMapKey(child)
		if shadowed, ok := existing[mk]; ok {
			c.logger.Warn().
				Str("key", child.key).
				Str("parent", returnFiber.componentName()).
				Msg("siblings share a key, dropping the earlier one")
			c.deleteChild(returnFiber, shadowed)
		}
		existing[mk] = child
	}

	var first, last *Fiber
	lastPlacedIndex := 0
	for i, child := range newChildren {
		nf := c.updateFromMap(existing, i, child)
		if nf == nil {
			continue
		}
		nf.index = i
		nf.parent = returnFiber
		if last == nil {
			first = nf
		} else {
			last.sibling = nf
		}
		last = nf

		if !c.trackEffects {
			continue
		}
		if current := nf.alternate; current != nil {
			if current.index < lastPlacedIndex {
				nf.flags |= Placement
				continue
			}
			lastPlacedIndex = current.index
		} else {
			nf.flags |= Placement
		}
	}

	// walk the old list rather than the map so deletions keep sibling order
	for child := currentFirstChild; child != nil; child = child.sibling {
		if existing[fiberMapKey(child)] == child {
			c.deleteChild(returnFiber, child)
		}
	}
	return first
}

func (c childReconciler) updateFromMap(existing map[childKey]*Fiber, index int, child any) *Fiber {
	switch el := child.(type) {
	case nil, bool:
		return nil
	case *Element:
		mk := elementMapKey(el.Key, index)
		before := existing[mk]
		if el.Type == Fragment {
			return updateFragment(existing, mk, el.Props["children"], el.Key)
		}
		if before != nil && before.typ == el.Type {
			delete(existing, mk)
			f := useFiber(before, el.Props)
			f.ref = el.Ref
			return f
		}
		return createFiberFromElement(el)
	}

	mk := elementMapKey("", index)
	if children, ok := childSlice(child); ok {
		return updateFragment(existing, mk, children, "")
	}
	if text, ok := textContent(child); ok {
		before := existing[mk]
		if before != nil && before.tag == TagHostText {
			delete(existing, mk)
			return useFiber(before, Props{"content": text})
		}
		return createFiberFromText(text)
	}
	return nil
}

func updateFragment(existing map[childKey]*Fiber, mk childKey, children any, key string) *Fiber {
	current := existing[mk]
	if current == nil || current.tag != TagFragment {
		return createFiberFromFragment(children, key)
	}
	delete(existing, mk)
	return useFiber(current, Props{"children": children})
}
