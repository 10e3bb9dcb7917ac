package fiber

import "fmt"

// Fiber is both a unit of render work and the record of one position in the
// tree. child and sibling own the subtree; parent and alternate are
// back-references. At most two fibers exist per position, linked through
// alternate: the committed one and the one being built.
type Fiber struct {
	tag WorkTag
	key string
	typ any

	pendingProps  Props
	memoizedProps Props
	memoizedState any
	updateQueue   any
	stateNode     any

	parent  *Fiber
	child   *Fiber
	sibling *Fiber
	index   int

	ref *Ref

	flags        Flags
	subtreeFlags Flags
	deletions    []*Fiber

	alternate *Fiber
}

func newFiber(tag WorkTag, pendingProps Props, key string) *Fiber {
	return &Fiber{
		tag:          tag,
		key:          key,
		pendingProps: pendingProps,
	}
}

// createWorkInProgress returns current's alternate prepared for a new pass,
// allocating it only the first time.
func createWorkInProgress(current *Fiber, pendingProps Props) *Fiber {
	wip := current.alternate
	if wip == nil {
		wip = newFiber(current.tag, pendingProps, current.key)
		wip.stateNode = current.stateNode
		wip.alternate = current
		current.alternate = wip
	} else {
		wip.pendingProps = pendingProps
		wip.flags = NoFlags
		wip.subtreeFlags = NoFlags
		wip.deletions = nil
	}
	wip.typ = current.typ
	wip.updateQueue = current.updateQueue
	wip.child = current.child
	wip.memoizedProps = current.memoizedProps
	wip.memoizedState = current.memoizedState
	wip.ref = current.ref
	return wip
}

func createFiberFromElement(el *Element) *Fiber {
	var tag WorkTag
	switch t := el.Type.(type) {
	case string:
		tag = TagHostComponent
	case *Component:
		tag = TagFunctionComponent
	case *providerType:
		tag = TagContextProvider
	case *Marker:
		switch t {
		case Suspense:
			tag = TagSuspense
		case Fragment:
			tag = TagFragment
		default:
			panic(fmt.Errorf("%w: %s", ErrUnknownElementType, t))
		}
	default:
		panic(fmt.Errorf("%w: %T", ErrUnknownElementType, el.Type))
	}
	f := newFiber(tag, el.Props, el.Key)
	f.typ = el.Type
	f.ref = el.Ref
	return f
}

func createFiberFromFragment(children any, key string) *Fiber {
	f := newFiber(TagFragment, Props{"children": children}, key)
	f.typ = Fragment
	return f
}

func createFiberFromText(content string) *Fiber {
	return newFiber(TagHostText, Props{"content": content}, "")
}

const (
	OffscreenVisible = "visible"
	OffscreenHidden  = "hidden"
)

func createFiberFromOffscreen(props Props) *Fiber {
	return newFiber(TagOffscreen, props, "")
}

func offscreenProps(mode string, children any) Props {
	return Props{"mode": mode, "children": children}
}

func isHostTag(tag WorkTag) bool {
	return tag == TagHostComponent || tag == TagHostText
}

// Read-only accessors, for inspection of committed trees.

func (f *Fiber) Tag() WorkTag { return f.tag }
func (f *Fiber) Key() string { return f.key }
func (f *Fiber) Type() any { return f.typ }
func (f *Fiber) Index() int { return f.index }
func (f *Fiber) Flags() Flags { return f.flags }
func (f *Fiber) SubtreeFlags() Flags { return f.subtreeFlags }
func (f *Fiber) Child() *Fiber { return f.child }
func (f *Fiber) Sibling() *Fiber { return f.sibling }
func (f *Fiber) Return() *Fiber { return f.parent }
func (f *Fiber) Alternate() *Fiber { return f.alternate }
func (f *Fiber) StateNode() any { return f.stateNode }
func (f *Fiber) MemoizedProps() Props { return f.memoizedProps }
func (f *Fiber) Deletions() []*Fiber { return f.deletions }

func (f *Fiber) componentName() string {
	if c, ok := f.typ.(*Component); ok {
		return c.Name
	}
	return f.tag.String()
}
