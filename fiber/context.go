package fiber

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

type contextCell interface {
	value() any
	swap(v any) any
}

type providerType struct {
	context contextCell
}

// Context carries a value to every component below a matching Provider.
// Outside any Provider, readers see the default value.
type Context[T any] struct {
	name     string
	id       uint64
	current  T
	provider *providerType
}

var contextSeq atomic.Uint64

func CreateContext[T any](name string, defaultValue T) *Context[T] {
	seq := contextSeq.Add(1)
	c := &Context[T]{
		name:    name,
		id:      xxhash.Sum64String(name) ^ seq,
		current: defaultValue,
	}
	c.provider = &providerType{context: c}
	return c
}

func (c *Context[T]) Name() string { return c.name }

func (c *Context[T]) ID() uint64 { return c.id }

func (c *Context[T]) Provider(value T, children ...any) *Element {
	return H(c.provider, Props{"value": value}, children...)
}

// Value is the value currently in effect, which outside a render pass is the
// default.
func (c *Context[T]) Value() T { return c.current }

func (c *Context[T]) value() any { return c.current }

func (c *Context[T]) swap(v any) any {
	prev := c.current
	if v == nil {
		var zero T
		c.current = zero
	} else {
		c.current = v.(T)
	}
	return prev
}

type contextFrame struct {
	cell contextCell
	prev any
}

func (r *Reconciler) pushProvider(cell contextCell, v any) {
	prev := cell.swap(v)
	r.contextStack = append(r.contextStack, contextFrame{cell: cell, prev: prev})
}

func (r *Reconciler) popProvider() {
	n := len(r.contextStack)
	if n == 0 {
		return
	}
	frame := r.contextStack[n-1]
	r.contextStack = r.contextStack[:n-1]
	frame.cell.swap(frame.prev)
}

// resetContextStack restores every value pushed by a pass that will not
// complete.
func (r *Reconciler) resetContextStack() {
	for len(r.contextStack) > 0 {
		r.popProvider()
	}
}
