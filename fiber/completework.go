package fiber

// completeWork creates or diffs the host node for a finished fiber and
// folds its children's flags into subtreeFlags.
func (r *Reconciler) completeWork(wip *Fiber) {
	current := wip.alternate
	props := wip.pendingProps

	switch wip.tag {
	case TagHostComponent:
		typ := wip.typ.(string)
		if current != nil && wip.stateNode != nil {
			payload := r.host.PrepareUpdate(wip.stateNode, typ, current.memoizedProps, props)
			wip.updateQueue = payload
			if len(payload) > 0 {
				wip.flags |= Update
			}
		} else {
			instance := r.host.CreateInstance(typ, props)
			r.appendAllChildren(instance, wip)
			wip.stateNode = instance
		}
	case TagHostText:
		content, _ := props["content"].(string)
		if current != nil && wip.stateNode != nil {
			old, _ := current.memoizedProps["content"].(string)
			if old != content {
				wip.updateQueue = UpdatePayload{"content", content}
				wip.flags |= Update
			}
		} else {
			wip.stateNode = r.host.CreateTextInstance(content)
		}
	case TagContextProvider:
		r.popProvider()
	case TagSuspense:
		r.popSuspenseHandler()
		completeSuspense(wip)
	}
	bubbleProperties(wip)
}

// appendAllChildren attaches the top-level host nodes below wip to instance.
func (r *Reconciler) appendAllChildren(instance Instance, wip *Fiber) {
	node := wip.child
	for node != nil {
		if isHostTag(node.tag) {
			r.host.AppendInitialChild(instance, node.stateNode)
		} else if node.child != nil {
			node = node.child
			continue
		}
		if node == wip {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == wip {
				return
			}
			node = node.parent
		}
		node = node.sibling
	}
}

func bubbleProperties(wip *Fiber) {
	var subtree Flags
	for child := wip.child; child != nil; child = child.sibling {
		subtree |= child.subtreeFlags | child.flags
		child.parent = wip
	}
	wip.subtreeFlags |= subtree
}
