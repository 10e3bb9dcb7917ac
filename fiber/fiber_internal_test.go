package fiber

import (
	"bytes"
	"math"
	"testing"

	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanes(t *testing.T) {
	lanes := mergeLanes(DefaultLane, mergeLanes(TransitionLane, InputContinuousLane))
	assert.Equal(t, InputContinuousLane, getHighestPriorityLane(lanes))
	assert.Equal(t, NoLane, getHighestPriorityLane(NoLanes))
	assert.True(t, isSubsetOfLanes(lanes, DefaultLane))
	assert.False(t, isSubsetOfLanes(lanes, SyncLane))
	assert.True(t, isSubsetOfLanes(SyncLane, NoLane))

	assert.Equal(t, scheduler.ImmediatePriority, laneToSchedulerPriority(SyncLane))
	assert.Equal(t, scheduler.UserBlockingPriority, laneToSchedulerPriority(InputContinuousLane))
	assert.Equal(t, scheduler.NormalPriority, laneToSchedulerPriority(DefaultLane))
	assert.Equal(t, scheduler.IdlePriority, laneToSchedulerPriority(TransitionLane))

	assert.Equal(t, SyncLane, schedulerPriorityToLane(scheduler.ImmediatePriority))
	assert.Equal(t, DefaultLane, schedulerPriorityToLane(scheduler.NormalPriority))
	assert.Equal(t, NoLane, schedulerPriorityToLane(scheduler.LowPriority))

	assert.Equal(t, "sync|default", (SyncLane | DefaultLane).String())
	assert.Equal(t, "none", NoLane.String())
}

func add(n int) stateUpdater {
	return func(prev any) any { return prev.(int) + n }
}

func TestProcessUpdateQueueReplaysSkippedUpdates(t *testing.T) {
	q := newUpdateQueue()
	q.enqueue(newUpdate(add(1), DefaultLane))
	q.enqueue(newUpdate(add(10), SyncLane))
	q.enqueue(newUpdate(add(100), DefaultLane))

	sync := processUpdateQueue(0, q.pending, SyncLane)
	assert.Equal(t, 10, sync.memoizedState)
	assert.Equal(t, 0, sync.baseState)
	require.NotNil(t, sync.baseQueue)

	var kept []Lane
	for u := sync.baseQueue.next; ; u = u.next {
		kept = append(kept, u.lane)
		if u == sync.baseQueue {
			break
		}
	}
	assert.Equal(t, []Lane{DefaultLane, NoLane, DefaultLane}, kept)

	rest := processUpdateQueue(sync.baseState, sync.baseQueue, DefaultLane)
	assert.Equal(t, 111, rest.memoizedState)
	assert.Equal(t, 111, rest.baseState)
	assert.Nil(t, rest.baseQueue)
}

func TestProcessUpdateQueueReplacement(t *testing.T) {
	q := newUpdateQueue()
	q.enqueue(newUpdate("a", DefaultLane))
	q.enqueue(newUpdate("b", DefaultLane))
	res := processUpdateQueue("start", q.pending, DefaultLane)
	assert.Equal(t, "b", res.memoizedState)
	assert.Nil(t, res.baseQueue)
}

func TestMergeUpdateListsKeepsOrder(t *testing.T) {
	base := newUpdateQueue()
	base.enqueue(newUpdate(1, DefaultLane))
	pending := newUpdateQueue()
	pending.enqueue(newUpdate(2, DefaultLane))
	pending.enqueue(newUpdate(3, DefaultLane))

	last := mergeUpdateLists(base.pending, pending.pending)
	var got []any
	for u := last.next; ; u = u.next {
		got = append(got, u.action)
		if u == last {
			break
		}
	}
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestCreateWorkInProgressReusesAlternate(t *testing.T) {
	current := newFiber(TagHostComponent, Props{}, "k")
	current.typ = "div"
	a := createWorkInProgress(current, Props{"id": "1"})
	a.flags = Placement
	b := createWorkInProgress(current, Props{"id": "2"})

	assert.Same(t, a, b)
	assert.Same(t, current, b.alternate)
	assert.Equal(t, NoFlags, b.flags)
	assert.Equal(t, "2", b.pendingProps["id"])
	assert.Equal(t, "k", b.key)
	assert.Equal(t, "div", b.typ)
}

func TestSameValue(t *testing.T) {
	s := []int{1}
	m := map[string]int{}
	assert.True(t, SameValue(math.NaN(), math.NaN()))
	assert.False(t, SameValue(0.0, math.Copysign(0, -1)))
	assert.True(t, SameValue(1, 1))
	assert.False(t, SameValue(1, int64(1)))
	assert.True(t, SameValue(s, s))
	assert.False(t, SameValue(s, []int{1}))
	assert.True(t, SameValue(m, m))
	assert.True(t, SameValue(nil, nil))
	assert.False(t, SameValue(nil, 0))

	assert.True(t, areHookInputsEqual([]any{1, "a"}, []any{1, "a"}))
	assert.False(t, areHookInputsEqual([]any{1}, []any{1, 2}))
	assert.False(t, areHookInputsEqual(nil, nil))
	assert.True(t, areHookInputsEqual([]any{}, []any{}))
}

func keyedList(keys ...string) *Element {
	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = H("li", Props{"key": k}, k)
	}
	return H("ul", nil, items...)
}

// renderDefault schedules element at the default lane and runs the render
// phase by hand, leaving the finished tree uncommitted.
func (e *stubEnv) renderDefault(t *testing.T, element any) *Fiber {
	t.Helper()
	e.root.Render(element)
	require.Equal(t, exitStatus(rootCompleted), e.r.renderRoot(e.root, DefaultLane, false))
	return e.root.current.alternate
}

func (e *stubEnv) commitDefault() {
	e.r.finishRender(e.root, DefaultLane, rootCompleted)
	e.manual.Flush()
}

func TestKeyedReorderFlagsOnlyBackwardMoves(t *testing.T) {
	e := newStubEnv(t)
	e.mount(keyedList("1", "2", "3"))

	finished := e.renderDefault(t, keyedList("3", "1", "2"))
	ul := finished.child
	var keys []string
	var placed []bool
	for c := ul.child; c != nil; c = c.sibling {
		keys = append(keys, c.key)
		placed = append(placed, c.flags&Placement != 0)
		require.NotNil(t, c.alternate, "fiber %s should be reused", c.key)
	}
	assert.Equal(t, []string{"3", "1", "2"}, keys)
	assert.Equal(t, []bool{false, true, true}, placed)

	e.host.calls = nil
	e.commitDefault()
	assert.Equal(t, "root(ul(li(3),li(1),li(2)))", e.container.String())
	assert.Equal(t, []string{"append li(1)", "append li(2)"}, e.host.calls)
}

func TestDeletionIsRecordedOnParent(t *testing.T) {
	e := newStubEnv(t)
	e.mount(keyedList("1", "2"))
	b := e.root.current.child.child.sibling

	finished := e.renderDefault(t, keyedList("1"))
	ul := finished.child
	require.Len(t, ul.deletions, 1)
	assert.Same(t, b, ul.deletions[0])
	assert.NotZero(t, ul.flags&ChildDeletion)

	e.commitDefault()
	assert.Equal(t, "root(ul(li(1)))", e.container.String())
	assert.Nil(t, b.parent)
}

func TestDuplicateKeysDeleteShadowedSiblings(t *testing.T) {
	var logs bytes.Buffer
	e := newStubEnv(t, WithLogger(zerolog.New(&logs)))
	e.mount(keyedList("a", "a", "b"))
	first := e.root.current.child.child
	second := first.sibling

	finished := e.renderDefault(t, keyedList("b"))
	ul := finished.child
	require.Len(t, ul.deletions, 2)
	assert.Same(t, first, ul.deletions[0])
	assert.Same(t, second, ul.deletions[1])
	assert.Contains(t, logs.String(), "siblings share a key")

	e.commitDefault()
	assert.Equal(t, "root(ul(li(b)))", e.container.String())
}

func TestPassiveFlushSchedulesPendingLanes(t *testing.T) {
	ran := 0
	comp := NewComponent("Effectful", func(h *Hooks, _ Props) (any, error) {
		UseEffect(h, func() func() {
			ran++
			return nil
		}, nil)
		return nil, nil
	})
	e := newStubEnv(t)
	e.root.Render(H(comp, nil))
	e.manual.FlushMicrotasks()
	require.Zero(t, ran)
	require.True(t, e.root.passiveFlushScheduled)

	// a lane marked without its own callback, as a ping does before scheduling
	markRootUpdated(e.root, DefaultLane)
	require.Nil(t, e.root.callbackNode)

	require.True(t, e.r.flushPassiveEffects(e.root))
	assert.Equal(t, 1, ran)
	assert.NotNil(t, e.root.callbackNode)
	assert.Equal(t, DefaultLane, e.root.callbackPriority)

	e.manual.Flush()
	assert.Equal(t, NoLanes, e.root.pendingLanes)
	assert.Equal(t, 2, ran, "effects without deps rerun after the default pass")
}

func TestExplicitKeyDoesNotMatchIndex(t *testing.T) {
	e := newStubEnv(t)
	e.mount(H("div", nil, H("p", nil, "a"), H("p", nil, "b")))

	finished := e.renderDefault(t, H("div", nil, H("p", nil, "a"), H("p", Props{"key": "1"}, "b")))
	second := finished.child.child.sibling
	assert.Nil(t, second.alternate)
	assert.NotZero(t, second.flags&Placement)
	assert.Len(t, finished.child.deletions, 1)
	e.commitDefault()
	assert.Equal(t, "root(div(p(a),p(b)))", e.container.String())
}

func TestTypeChangeReplacesFiber(t *testing.T) {
	e := newStubEnv(t)
	e.mount(H("div", nil, "x"))
	old := e.root.current.child

	finished := e.renderDefault(t, H("span", nil, "x"))
	assert.Nil(t, finished.child.alternate)
	assert.NotZero(t, finished.child.flags&Placement)
	require.Len(t, finished.deletions, 1)
	assert.Same(t, old, finished.deletions[0])

	e.commitDefault()
	assert.Equal(t, "root(span(x))", e.container.String())
}

func TestUnkeyedFragmentIsUnwrapped(t *testing.T) {
	e := newStubEnv(t)
	e.mount(Frag(H("a", nil), H("b", nil)))
	first := e.root.current.child
	assert.Equal(t, TagHostComponent, first.tag)
	assert.Equal(t, "b", first.sibling.typ)
	assert.Equal(t, "root(a(),b())", e.container.String())
}

func TestNullChildrenDeleteEverything(t *testing.T) {
	e := newStubEnv(t)
	e.mount(H("div", nil, H("i", nil), false, nil, "t"))
	assert.Equal(t, "root(div(i(),t))", e.container.String())

	e.renderDefault(t, H("div", nil, nil))
	e.commitDefault()
	assert.Equal(t, "root(div())", e.container.String())
}

func assertNoMutationFlags(t *testing.T, f *Fiber) {
	t.Helper()
	for ; f != nil; f = f.sibling {
		assert.Zero(t, f.flags&MutationMask, "%s carries %b", f.componentName(), f.flags)
		assert.Zero(t, f.subtreeFlags&MutationMask, "%s subtree carries %b", f.componentName(), f.subtreeFlags)
		assertNoMutationFlags(t, f.child)
	}
}

func TestSecondIdenticalRenderHasNoMutations(t *testing.T) {
	tree := func() *Element {
		return H("div", Props{"id": "a"},
			H("span", nil, "x"),
			"y",
			Frag(H("b", nil, 1), H("i", nil, 2.5)),
		)
	}
	e := newStubEnv(t)
	e.mount(tree())

	finished := e.renderDefault(t, tree())
	assertNoMutationFlags(t, finished)

	e.host.calls = nil
	e.commitDefault()
	assert.Empty(t, e.host.calls)
}

func TestMountAppendsWholeTreeOnce(t *testing.T) {
	e := newStubEnv(t)
	e.mount(H("div", nil, H("span", nil, "hello")))
	assert.Equal(t, []string{
		"text hello",
		"create span",
		"initial span<-hello",
		"create div",
		"initial div<-span(hello)",
		"append div(span(hello))",
	}, e.host.calls)
}

func TestRenderPanicKeepsCurrent(t *testing.T) {
	var got error
	e := newStubEnv(t, WithOnRenderError(func(_ *Root, err error) { got = err }))
	e.mount(H("p", nil, "ok"))
	before := e.root.current

	boom := NewComponent("Boom", func(*Hooks, Props) (any, error) { panic("boom") })
	e.root.Render(H(boom, nil))
	e.manual.Flush()

	var pe *PanicError
	require.ErrorAs(t, got, &pe)
	assert.Equal(t, "Boom", pe.Component)
	assert.Same(t, before, e.root.current)
	assert.Equal(t, "root(p(ok))", e.container.String())
	assert.Nil(t, e.r.workInProgress)
}

func TestContextStackRestoredOnAbort(t *testing.T) {
	ctx := CreateContext("theme", "light")
	fail := NewComponent("Fail", func(*Hooks, Props) (any, error) {
		return nil, assert.AnError
	})
	e := newStubEnv(t)
	e.mount(ctx.Provider("dark", H(fail, nil)))
	assert.Equal(t, "light", ctx.Value())
	assert.Empty(t, e.r.contextStack)
}
