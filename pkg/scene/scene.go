// Package scene reads element trees from YAML files.
//
//	title: Inbox
//	root:
//	  type: div
//	  style: {border: rounded}
//	  children:
//	    - type: h1
//	      children: [{text: Inbox}]
//	    - type: ul
//	      children:
//	        - {type: li, key: a, children: [{text: first}]}
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/fiberparty/fiber"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("scene: invalid")

type Scene struct {
	Title string `yaml:"title"`
	Root  Node   `yaml:"root"`
}

// Node is one element or, when Text is set, one text child. Type "fragment"
// groups its children without a host node.
type Node struct {
	Type     string            `yaml:"type"`
	Key      string            `yaml:"key"`
	Text     *string           `yaml:"text"`
	Props    map[string]any    `yaml:"props"`
	Style    map[string]string `yaml:"style"`
	Children []Node            `yaml:"children"`
}

func Load(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if err := s.Root.validate("root"); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (n *Node) validate(path string) error {
	switch {
	case n.Text != nil && n.Type != "":
		return fmt.Errorf("%w: %s has both text and type", ErrInvalidScene, path)
	case n.Text != nil && len(n.Children) > 0:
		return fmt.Errorf("%w: %s is text but has children", ErrInvalidScene, path)
	case n.Text == nil && n.Type == "":
		return fmt.Errorf("%w: %s needs a type or text", ErrInvalidScene, path)
	}
	for i := range n.Children {
		if err := n.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Element converts the scene into the tree a Root renders.
func (s *Scene) Element() any {
	return s.Root.element()
}

func (n *Node) element() any {
	if n.Text != nil {
		return *n.Text
	}
	children := make([]any, len(n.Children))
	for i := range n.Children {
		children[i] = n.Children[i].element()
	}
	if n.Type == "fragment" {
		el := fiber.Frag(children...)
		el.Key = n.Key
		return el
	}

	props := make(fiber.Props, len(n.Props)+2)
	for k, v := range n.Props {
		props[k] = v
	}
	if len(n.Style) > 0 {
		props["style"] = n.Style
	}
	if n.Key != "" {
		props["key"] = n.Key
	}
	return fiber.H(n.Type, props, children...)
}
