package memdom

import (
	"maps"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/rs/zerolog"
)

type OpKind uint8

const (
	OpCreate OpKind = iota
	OpCreateText
	OpAppendInitial
	OpAppend
	OpInsert
	OpRemove
	OpUpdate
	OpHide
	OpUnhide
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpCreateText:
		return "create-text"
	case OpAppendInitial:
		return "append-initial"
	case OpAppend:
		return "append"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpUpdate:
		return "update"
	case OpHide:
		return "hide"
	case OpUnhide:
		return "unhide"
	default:
		return "unknown"
	}
}

// Op is one host call. Node, Parent and Before are node IDs; 0 means none,
// and containers are always 0.
type Op struct {
	Kind    OpKind
	Type    string
	Node    int
	Parent  int
	Before  int
	Payload fiber.UpdatePayload
}

// Host implements fiber.HostConfig over Nodes and records every call.
type Host struct {
	logger zerolog.Logger
	nextID int
	ops    []Op
}

var _ fiber.HostConfig = (*Host)(nil)

type Option func(*Host)

func WithLogger(l zerolog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

func NewHost(opts ...Option) *Host {
	h := &Host{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Ops returns the calls recorded since the last Reset.
func (h *Host) Ops() []Op { return h.ops }

func (h *Host) Reset() { h.ops = nil }

// Count returns how many recorded calls were of kind k.
func (h *Host) Count(k OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

func (h *Host) record(op Op) {
	h.ops = append(h.ops, op)
	h.logger.Trace().
		Stringer("op", op.Kind).
		Str("type", op.Type).
		Int("node", op.Node).
		Int("parent", op.Parent).
		Int("before", op.Before).
		Msg("host")
}

func (h *Host) newNode(kind Kind, typ string) *Node {
	h.nextID++
	return &Node{ID: h.nextID, Kind: kind, Type: typ}
}

func asNode(v any) *Node {
	n, ok := v.(*Node)
	if !ok {
		panic("memdom: not a *memdom.Node")
	}
	return n
}

func (h *Host) CreateInstance(typ string, props fiber.Props) fiber.Instance {
	n := h.newNode(KindElement, typ)
	n.Props = map[string]any{}
	for k, v := range props {
		switch {
		case k == "children" || isEventProp(k):
		case k == "style":
			n.Style = maps.Clone(styleOf(v))
		case v != nil:
			n.Props[k] = v
		}
	}
	h.record(Op{Kind: OpCreate, Type: typ, Node: n.ID})
	return n
}

func (h *Host) CreateTextInstance(content string) fiber.Instance {
	n := h.newNode(KindText, "#text")
	n.Text = content
	h.record(Op{Kind: OpCreateText, Type: n.Type, Node: n.ID})
	return n
}

func (h *Host) AppendInitialChild(parent, child fiber.Instance) {
	p, c := asNode(parent), asNode(child)
	p.appendChild(c)
	h.record(Op{Kind: OpAppendInitial, Type: c.Type, Node: c.ID, Parent: p.ID})
}

func (h *Host) AppendChildToContainer(child fiber.Instance, container fiber.Container) {
	p, c := asNode(container), asNode(child)
	p.appendChild(c)
	h.record(Op{Kind: OpAppend, Type: c.Type, Node: c.ID, Parent: p.ID})
}

func (h *Host) InsertChildToContainer(child fiber.Instance, container fiber.Container, before fiber.Instance) {
	p, c, b := asNode(container), asNode(child), asNode(before)
	p.insertBefore(c, b)
	h.record(Op{Kind: OpInsert, Type: c.Type, Node: c.ID, Parent: p.ID, Before: b.ID})
}

func (h *Host) RemoveChild(child fiber.Instance, container fiber.Container) {
	p, c := asNode(container), asNode(child)
	if !p.removeChild(c) {
		h.logger.Warn().Int("node", c.ID).Int("parent", p.ID).Msg("remove of a node that is not a child")
	}
	h.record(Op{Kind: OpRemove, Type: c.Type, Node: c.ID, Parent: p.ID})
}

func (h *Host) PrepareUpdate(_ fiber.Instance, _ string, oldProps, newProps fiber.Props) fiber.UpdatePayload {
	return DiffProps(oldProps, newProps)
}

// CommitUpdate applies a payload from DiffProps, or ["content", text] on a
// text node.
func (h *Host) CommitUpdate(instance fiber.Instance, payload fiber.UpdatePayload) {
	n := asNode(instance)
	for i := 0; i+1 < len(payload); i += 2 {
		k, _ := payload[i].(string)
		v := payload[i+1]
		switch {
		case n.Kind == KindText && k == "content":
			n.Text, _ = v.(string)
		case k == "style":
			applyStyle(n, styleOf(v))
		case v == "" || v == nil:
			delete(n.Props, k)
		default:
			if n.Props == nil {
				n.Props = map[string]any{}
			}
			n.Props[k] = v
		}
	}
	h.record(Op{Kind: OpUpdate, Type: n.Type, Node: n.ID, Payload: payload})
}

func applyStyle(n *Node, changed map[string]string) {
	for k, v := range changed {
		if v == "" {
			delete(n.Style, k)
			continue
		}
		if n.Style == nil {
			n.Style = map[string]string{}
		}
		n.Style[k] = v
	}
}

func (h *Host) HideInstance(instance fiber.Instance) {
	n := asNode(instance)
	applyStyle(n, map[string]string{"display": "none"})
	h.record(Op{Kind: OpHide, Type: n.Type, Node: n.ID})
}

// UnhideInstance restores whatever display the props ask for.
func (h *Host) UnhideInstance(instance fiber.Instance, props fiber.Props) {
	n := asNode(instance)
	applyStyle(n, map[string]string{"display": styleOf(props["style"])["display"]})
	h.record(Op{Kind: OpUnhide, Type: n.Type, Node: n.ID})
}

func (h *Host) HideTextInstance(instance fiber.Instance) {
	n := asNode(instance)
	n.Text = ""
	h.record(Op{Kind: OpHide, Type: n.Type, Node: n.ID})
}

func (h *Host) UnhideTextInstance(instance fiber.Instance, text string) {
	n := asNode(instance)
	n.Text = text
	h.record(Op{Kind: OpUnhide, Type: n.Type, Node: n.ID})
}
