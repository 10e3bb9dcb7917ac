package fiber

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type Props map[string]any

func (p Props) Children() any { return p["children"] }

// Element describes one node of the tree a component wants rendered.
//
// Type is a string for host elements, a *Component, Fragment, Suspense, or
// the provider marker of a Context. An empty Key means the element has none.
type Element struct {
	Type  any
	Key   string
	Ref   *Ref
	Props Props
}

type Ref struct {
	Current any
}

// Marker is an element type with no behavior of its own beyond its tag.
type Marker struct {
	name string
	id   uint64
}

func newMarker(name string) *Marker {
	return &Marker{name: name, id: xxhash.Sum64String("fiberparty." + name)}
}

func (m *Marker) String() string { return fmt.Sprintf("%s#%016x", m.name, m.id) }

var (
	Fragment = newMarker("fragment")
	Suspense = newMarker("suspense")
)

type RenderFunc func(h *Hooks, props Props) (any, error)

// Component is a function component. Components are identified by pointer,
// so declare each once and reuse it.
type Component struct {
	Name   string
	Render RenderFunc
}

func NewComponent(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

// H builds an element. "key" and "ref" are lifted out of props; a single
// child is stored as is, several as []any.
func H(typ any, props Props, children ...any) *Element {
	el := &Element{Type: typ, Props: make(Props, len(props)+1)}
	for k, v := range props {
		switch k {
		case "key":
			if v != nil {
				el.Key = keyString(v)
			}
		case "ref":
			el.Ref, _ = v.(*Ref)
		default:
			el.Props[k] = v
		}
	}
	switch len(children) {
	case 0:
	case 1:
		el.Props["children"] = children[0]
	default:
		el.Props["children"] = children
	}
	return el
}

// Text formats v as the content of a text child.
func Text(v any) string {
	if s, ok := textContent(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

func Frag(children ...any) *Element {
	return H(Fragment, nil, children...)
}

func SuspenseOf(fallback any, children ...any) *Element {
	return H(Suspense, Props{"fallback": fallback}, children...)
}

func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(k)
	}
}

// textContent reports whether child renders as a text node.
func textContent(child any) (string, bool) {
	switch c := child.(type) {
	case string:
		return c, true
	case int:
		return strconv.Itoa(c), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(c), true
	case float32:
		return strconv.FormatFloat(float64(c), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64), true
	}
	return "", false
}

func childSlice(child any) ([]any, bool) {
	switch c := child.(type) {
	case []any:
		return c, true
	case []*Element:
		out := make([]any, len(c))
		for i, el := range c {
			out[i] = el
		}
		return out, true
	}
	return nil, false
}
