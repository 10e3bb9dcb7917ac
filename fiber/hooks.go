package fiber

import "fmt"

type hook struct {
	memoizedState any
	queue         *updateQueue
	next          *hook

	baseState any
	baseQueue *update
}

// EffectFunc runs after commit. The returned cleanup, if any, runs before the
// effect runs again and when the component unmounts.
type EffectFunc func() (cleanup func())

type effect struct {
	tag     HookFlags
	create  EffectFunc
	destroy func()
	deps    []any
	next    *effect
}

// effectQueue is a function component's updateQueue: a circular list of its
// effects, lastEffect pointing at the newest.
type effectQueue struct {
	lastEffect *effect
}

type dispatcher struct {
	useState      func(h *Hooks, initial any) (any, func(any))
	useEffect     func(h *Hooks, create EffectFunc, deps []any)
	useTransition func(h *Hooks) (bool, func(func()))
	useRef        func(h *Hooks, initial any) *Ref
	useContext    func(h *Hooks, cell contextCell) any
}

// The tables are filled in init because the hook implementations reach
// renderWithHooks through scheduling, which reads them.
var mountDispatcher, updateDispatcher dispatcher

func init() {
	mountDispatcher = dispatcher{
		useState:      mountState,
		useEffect:     mountEffect,
		useTransition: mountTransition,
		useRef:        mountRef,
		useContext:    mountContext,
	}
	updateDispatcher = dispatcher{
		useState:      updateState,
		useEffect:     updateEffect,
		useTransition: updateTransition,
		useRef:        updateRef,
		useContext:    updateContext,
	}
}

// Hooks is the render handle a component receives. It is only valid while
// that component's render is running.
type Hooks struct {
	r          *Reconciler
	fiber      *Fiber
	dispatcher *dispatcher
	renderLane Lane

	currentHook        *hook
	workInProgressHook *hook
}

func (h *Hooks) mustBeRendering() {
	if h == nil || h.fiber == nil || h.dispatcher == nil {
		panic(ErrInvalidHookCall)
	}
}

func (h *Hooks) release() {
	h.fiber = nil
	h.dispatcher = nil
	h.currentHook = nil
	h.workInProgressHook = nil
}

// renderWithHooks runs a function component and returns the children it
// described.
func (r *Reconciler) renderWithHooks(wip *Fiber, lane Lane) (any, error) {
	comp, ok := wip.typ.(*Component)
	if !ok || comp.Render == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnknownElementType, wip.typ)
	}

	h := &Hooks{r: r, fiber: wip, renderLane: lane}
	wip.memoizedState = nil
	wip.updateQueue = nil
	if wip.alternate != nil {
		h.dispatcher = &updateDispatcher
	} else {
		h.dispatcher = &mountDispatcher
	}
	defer h.release()

	children, err := comp.Render(h, wip.pendingProps)
	if err != nil {
		return nil, err
	}
	if h.dispatcher == &updateDispatcher && h.renderedTooFewHooks() {
		panic(fmt.Errorf("%w: %s rendered fewer hooks than during the previous render", ErrHookMismatch, comp.Name))
	}
	return children, nil
}

func (h *Hooks) renderedTooFewHooks() bool {
	if h.currentHook != nil {
		return h.currentHook.next != nil
	}
	prev, _ := h.fiber.alternate.memoizedState.(*hook)
	return prev != nil
}

func (h *Hooks) mountWorkInProgressHook() *hook {
	nh := &hook{}
	if h.workInProgressHook == nil {
		h.fiber.memoizedState = nh
	} else {
		h.workInProgressHook.next = nh
	}
	h.workInProgressHook = nh
	return nh
}

func (h *Hooks) updateWorkInProgressHook() *hook {
	var next *hook
	if h.currentHook == nil {
		next, _ = h.fiber.alternate.memoizedState.(*hook)
	} else {
		next = h.currentHook.next
	}
	if next == nil {
		panic(fmt.Errorf("%w: %s rendered more hooks than during the previous render", ErrHookMismatch, h.fiber.componentName()))
	}
	h.currentHook = next

	nh := &hook{
		memoizedState: next.memoizedState,
		queue:         next.queue,
		baseState:     next.baseState,
		baseQueue:     next.baseQueue,
	}
	if h.workInProgressHook == nil {
		h.fiber.memoizedState = nh
	} else {
		h.workInProgressHook.next = nh
	}
	h.workInProgressHook = nh
	return nh
}

func mountState(h *Hooks, initial any) (any, func(any)) {
	hk := h.mountWorkInProgressHook()
	q := newUpdateQueue()
	hk.queue = q
	hk.memoizedState = initial
	hk.baseState = initial

	r, f := h.r, h.fiber
	q.dispatch = func(action any) {
		r.dispatchSetState(f, q, action)
	}
	return initial, q.dispatch
}

func updateState(h *Hooks, _ any) (any, func(any)) {
	hk := h.updateWorkInProgressHook()
	q := hk.queue
	current := h.currentHook

	baseQueue := current.baseQueue
	if pending := q.pending; pending != nil {
		baseQueue = mergeUpdateLists(baseQueue, pending)
		// kept on the committed hook so a discarded pass loses nothing
		current.baseQueue = baseQueue
		q.pending = nil
	}
	if baseQueue != nil {
		res := processUpdateQueue(hk.baseState, baseQueue, h.renderLane)
		hk.memoizedState = res.memoizedState
		hk.baseState = res.baseState
		hk.baseQueue = res.baseQueue
	}
	return hk.memoizedState, q.dispatch
}

func (r *Reconciler) dispatchSetState(f *Fiber, q *updateQueue, action any) {
	lane := r.requestUpdateLane()
	q.enqueue(newUpdate(action, lane))
	r.scheduleUpdateOnFiber(f, lane)
}

func pushEffect(h *Hooks, tag HookFlags, create EffectFunc, destroy func(), deps []any) *effect {
	e := &effect{tag: tag, create: create, destroy: destroy, deps: deps}
	q, _ := h.fiber.updateQueue.(*effectQueue)
	if q == nil {
		q = &effectQueue{}
		h.fiber.updateQueue = q
	}
	if q.lastEffect == nil {
		e.next = e
	} else {
		e.next = q.lastEffect.next
		q.lastEffect.next = e
	}
	q.lastEffect = e
	return e
}

func mountEffect(h *Hooks, create EffectFunc, deps []any) {
	hk := h.mountWorkInProgressHook()
	h.fiber.flags |= PassiveEffect
	hk.memoizedState = pushEffect(h, HookPassive|HookHasEffect, create, nil, deps)
}

func updateEffect(h *Hooks, create EffectFunc, deps []any) {
	hk := h.updateWorkInProgressHook()
	var destroy func()
	if prev, ok := h.currentHook.memoizedState.(*effect); ok {
		destroy = prev.destroy
		if areHookInputsEqual(deps, prev.deps) {
			hk.memoizedState = pushEffect(h, HookPassive, create, destroy, deps)
			return
		}
	}
	h.fiber.flags |= PassiveEffect
	hk.memoizedState = pushEffect(h, HookPassive|HookHasEffect, create, destroy, deps)
}

func mountTransition(h *Hooks) (bool, func(func())) {
	_, setPending := mountState(h, false)
	hk := h.mountWorkInProgressHook()
	r := h.r
	start := func(callback func()) {
		r.startTransition(setPending, callback)
	}
	hk.memoizedState = start
	return false, start
}

func updateTransition(h *Hooks) (bool, func(func())) {
	pending, _ := updateState(h, nil)
	hk := h.updateWorkInProgressHook()
	isPending, _ := pending.(bool)
	return isPending, hk.memoizedState.(func(func()))
}

// startTransition flips the pending flag at the ambient lane, then runs
// callback with every update it makes, including clearing the flag, on the
// transition lane.
func (r *Reconciler) startTransition(setPending func(any), callback func()) {
	setPending(true)
	prev := r.inTransition
	r.inTransition = true
	defer func() { r.inTransition = prev }()
	callback()
	setPending(false)
}

func mountRef(h *Hooks, initial any) *Ref {
	hk := h.mountWorkInProgressHook()
	ref := &Ref{Current: initial}
	hk.memoizedState = ref
	return ref
}

func updateRef(h *Hooks, _ any) *Ref {
	hk := h.updateWorkInProgressHook()
	return hk.memoizedState.(*Ref)
}

func mountContext(h *Hooks, cell contextCell) any {
	hk := h.mountWorkInProgressHook()
	v := cell.value()
	hk.memoizedState = v
	return v
}

func updateContext(h *Hooks, cell contextCell) any {
	hk := h.updateWorkInProgressHook()
	v := cell.value()
	hk.memoizedState = v
	return v
}

// Setter updates one piece of state created by UseState.
type Setter[T any] struct {
	dispatch func(any)
}

func (s Setter[T]) Set(v T) {
	s.dispatch(v)
}

func (s Setter[T]) Update(fn func(prev T) T) {
	s.dispatch(stateUpdater(func(prev any) any {
		p, _ := prev.(T)
		return fn(p)
	}))
}

func UseState[T any](h *Hooks, initial T) (T, Setter[T]) {
	h.mustBeRendering()
	state, dispatch := h.dispatcher.useState(h, initial)
	v, _ := state.(T)
	return v, Setter[T]{dispatch: dispatch}
}

// UseEffect schedules create to run after commit. A nil deps slice reruns it
// after every commit; an empty one runs it once.
func UseEffect(h *Hooks, create EffectFunc, deps []any) {
	h.mustBeRendering()
	h.dispatcher.useEffect(h, create, deps)
}

func UseTransition(h *Hooks) (bool, func(func())) {
	h.mustBeRendering()
	return h.dispatcher.useTransition(h)
}

func UseRef(h *Hooks, initial any) *Ref {
	h.mustBeRendering()
	return h.dispatcher.useRef(h, initial)
}

func UseContext[T any](h *Hooks, c *Context[T]) T {
	h.mustBeRendering()
	v := h.dispatcher.useContext(h, c)
	out, _ := v.(T)
	return out
}

// Use reads a thenable. While it is pending Use returns a *SuspendedError,
// which the component should return as is.
func Use[T any](h *Hooks, t Thenable) (T, error) {
	h.mustBeRendering()
	var zero T
	switch t.Status() {
	case Fulfilled:
		v, _ := t.Value().(T)
		return v, nil
	case Rejected:
		return zero, t.Err()
	default:
		return zero, &SuspendedError{Thenable: t}
	}
}
