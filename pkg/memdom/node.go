// Package memdom is an in-memory document tree that a fiber.Reconciler can
// render into. Inserting a node that already has a parent moves it, as in a
// browser DOM.
package memdom

import (
	"maps"
	"slices"
)

type Kind uint8

const (
	KindElement Kind = iota
	KindText
	KindRoot
)

type Node struct {
	ID   int
	Kind Kind
	Type string
	Text string

	Props map[string]any
	Style map[string]string

	Parent   *Node
	Children []*Node
}

// NewContainer returns an empty root node to mount a tree into.
func NewContainer() *Node {
	return &Node{Kind: KindRoot, Type: "#root"}
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.Children, child)
}

func (n *Node) detach() {
	if n.Parent == nil {
		return
	}
	if i := n.Parent.indexOf(n); i >= 0 {
		n.Parent.Children = slices.Delete(n.Parent.Children, i, i+1)
	}
	n.Parent = nil
}

func (n *Node) appendChild(child *Node) {
	child.detach()
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) insertBefore(child, before *Node) {
	child.detach()
	i := n.indexOf(before)
	if i < 0 {
		n.appendChild(child)
		return
	}
	child.Parent = n
	n.Children = slices.Insert(n.Children, i, child)
}

func (n *Node) removeChild(child *Node) bool {
	if child.Parent != n {
		return false
	}
	child.detach()
	return true
}

// Hidden reports whether the node was hidden by a Suspense boundary.
func (n *Node) Hidden() bool {
	return n.Style["display"] == "none"
}

// TextContent concatenates the text of every visible text node below n.
func (n *Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		if c.Kind == KindElement && c.Hidden() {
			continue
		}
		out += c.TextContent()
	}
	return out
}

// Find returns the first node in document order with the given "id" prop.
func (n *Node) Find(id string) *Node {
	if v, ok := n.Props["id"]; ok && v == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Snapshot is a parent-free copy of a subtree, convenient for comparing
// trees in tests.
type Snapshot struct {
	Type     string
	Text     string            `json:",omitempty"`
	Props    map[string]any    `json:",omitempty"`
	Style    map[string]string `json:",omitempty"`
	Children []Snapshot        `json:",omitempty"`
}

func (n *Node) Snapshot() Snapshot {
	s := Snapshot{Type: n.Type, Text: n.Text}
	if len(n.Props) > 0 {
		s.Props = maps.Clone(n.Props)
	}
	if len(n.Style) > 0 {
		s.Style = maps.Clone(n.Style)
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}
