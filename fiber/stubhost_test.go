package fiber

import (
	"fmt"
	"slices"
	"testing"

	"github.com/delaneyj/fiberparty/scheduler"
)

type stubNode struct {
	typ      string
	text     string
	parent   *stubNode
	children []*stubNode
}

func (n *stubNode) remove(child *stubNode) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	child.parent = nil
}

func (n *stubNode) String() string {
	if n.typ == "#text" {
		return n.text
	}
	out := n.typ + "("
	for i, c := range n.children {
		if i > 0 {
			out += ","
		}
		out += c.String()
	}
	return out + ")"
}

// stubHost keeps a minimal tree and a log of calls.
type stubHost struct {
	calls []string
}

func (h *stubHost) log(format string, args ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *stubHost) CreateInstance(typ string, _ Props) Instance {
	h.log("create %s", typ)
	return &stubNode{typ: typ}
}

func (h *stubHost) CreateTextInstance(content string) Instance {
	h.log("text %s", content)
	return &stubNode{typ: "#text", text: content}
}

func (h *stubHost) AppendInitialChild(parent, child Instance) {
	p, c := parent.(*stubNode), child.(*stubNode)
	h.log("initial %s<-%s", p.typ, c)
	c.parent = p
	p.children = append(p.children, c)
}

func (h *stubHost) AppendChildToContainer(child Instance, container Container) {
	p, c := container.(*stubNode), child.(*stubNode)
	h.log("append %s", c)
	if c.parent != nil {
		c.parent.remove(c)
	}
	c.parent = p
	p.children = append(p.children, c)
}

func (h *stubHost) InsertChildToContainer(child Instance, container Container, before Instance) {
	p, c, b := container.(*stubNode), child.(*stubNode), before.(*stubNode)
	h.log("insert %s before %s", c, b)
	if c.parent != nil {
		c.parent.remove(c)
	}
	c.parent = p
	i := slices.Index(p.children, b)
	p.children = slices.Insert(p.children, i, c)
}

func (h *stubHost) RemoveChild(child Instance, container Container) {
	p, c := container.(*stubNode), child.(*stubNode)
	h.log("remove %s", c)
	p.remove(c)
}

func (h *stubHost) PrepareUpdate(_ Instance, _ string, oldProps, newProps Props) UpdatePayload {
	var payload UpdatePayload
	for k, v := range newProps {
		if k != "children" && !SameValue(oldProps[k], v) {
			payload = append(payload, k, v)
		}
	}
	for k := range oldProps {
		if _, ok := newProps[k]; !ok && k != "children" {
			payload = append(payload, k, "")
		}
	}
	return payload
}

func (h *stubHost) CommitUpdate(instance Instance, payload UpdatePayload) {
	n := instance.(*stubNode)
	if n.typ == "#text" && len(payload) == 2 && payload[0] == "content" {
		n.text = payload[1].(string)
	}
	h.log("update %s %v", n.typ, []any(payload))
}

func (h *stubHost) HideInstance(instance Instance) { h.log("hide %s", instance.(*stubNode).typ) }

func (h *stubHost) UnhideInstance(instance Instance, _ Props) {
	h.log("unhide %s", instance.(*stubNode).typ)
}

func (h *stubHost) HideTextInstance(Instance) { h.log("hide text") }

func (h *stubHost) UnhideTextInstance(Instance, string) { h.log("unhide text") }

type stubEnv struct {
	manual    *scheduler.ManualHost
	host      *stubHost
	r         *Reconciler
	container *stubNode
	root      *Root
}

func newStubEnv(t *testing.T, opts ...Option) *stubEnv {
	t.Helper()
	manual := scheduler.NewManualHost()
	host := &stubHost{}
	r := New(host, scheduler.New(manual), opts...)
	container := &stubNode{typ: "root"}
	return &stubEnv{
		manual:    manual,
		host:      host,
		r:         r,
		container: container,
		root:      r.CreateContainer(container),
	}
}

// mount renders element at the sync lane and drains the host.
func (e *stubEnv) mount(element any) {
	e.root.Render(element)
	e.manual.Flush()
}
