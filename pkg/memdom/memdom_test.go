package memdom_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffProps(t *testing.T) {
	onClick := func() {}
	old := fiber.Props{
		"id":       "a",
		"title":    "x",
		"children": "old",
		"onClick":  onClick,
		"style":    map[string]any{"color": "red", "width": 10},
	}
	next := fiber.Props{
		"id":       "a",
		"class":    "big",
		"children": "new",
		"onClick":  func() {},
		"style":    map[string]any{"color": "blue", "width": 10},
	}

	got := memdom.DiffProps(old, next)
	want := fiber.UpdatePayload{
		"class", "big",
		"style", map[string]string{"color": "blue"},
		"title", "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffPropsUnchanged(t *testing.T) {
	props := fiber.Props{"id": "a", "style": map[string]string{"color": "red"}}
	assert.Empty(t, memdom.DiffProps(props, fiber.Props{"id": "a", "style": map[string]string{"color": "red"}}))
}

func TestDiffPropsStyleRemoved(t *testing.T) {
	got := memdom.DiffProps(
		fiber.Props{"style": map[string]string{"color": "red"}},
		fiber.Props{},
	)
	if diff := cmp.Diff(fiber.UpdatePayload{"style", map[string]string{"color": ""}}, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertMovesExistingNode(t *testing.T) {
	h := memdom.NewHost()
	root := memdom.NewContainer()
	a := h.CreateTextInstance("a")
	b := h.CreateTextInstance("b")
	c := h.CreateTextInstance("c")
	h.AppendChildToContainer(a, root)
	h.AppendChildToContainer(b, root)
	h.AppendChildToContainer(c, root)

	h.InsertChildToContainer(c, root, a)
	assert.Equal(t, "cab", root.TextContent())

	h.AppendChildToContainer(c, root)
	assert.Equal(t, "abc", root.TextContent())
	require.Len(t, root.Children, 3)

	h.RemoveChild(b, root)
	assert.Equal(t, "ac", root.TextContent())
	assert.Nil(t, b.(*memdom.Node).Parent)
}

func TestCommitUpdate(t *testing.T) {
	h := memdom.NewHost()
	n := h.CreateInstance("div", fiber.Props{
		"id":    "x",
		"title": "t",
		"style": map[string]string{"color": "red"},
	}).(*memdom.Node)

	h.CommitUpdate(n, fiber.UpdatePayload{
		"title", "",
		"class", "c",
		"style", map[string]string{"color": "", "width": "3px"},
	})
	assert.Equal(t, map[string]any{"id": "x", "class": "c"}, n.Props)
	assert.Equal(t, map[string]string{"width": "3px"}, n.Style)

	txt := h.CreateTextInstance("old").(*memdom.Node)
	h.CommitUpdate(txt, fiber.UpdatePayload{"content", "new"})
	assert.Equal(t, "new", txt.Text)
	assert.Equal(t, 2, h.Count(memdom.OpUpdate))
}

func TestHideAndUnhide(t *testing.T) {
	h := memdom.NewHost()
	props := fiber.Props{"style": map[string]string{"display": "flex"}}
	n := h.CreateInstance("div", props).(*memdom.Node)
	txt := h.CreateTextInstance("hello").(*memdom.Node)

	h.HideInstance(n)
	h.HideTextInstance(txt)
	assert.True(t, n.Hidden())
	assert.Empty(t, txt.Text)

	h.UnhideInstance(n, props)
	h.UnhideTextInstance(txt, "hello")
	assert.Equal(t, "flex", n.Style["display"])
	assert.Equal(t, "hello", txt.Text)

	plain := h.CreateInstance("span", nil).(*memdom.Node)
	h.HideInstance(plain)
	h.UnhideInstance(plain, nil)
	assert.Empty(t, plain.Style)
}

func TestWriteHTML(t *testing.T) {
	h := memdom.NewHost()
	root := memdom.NewContainer()
	div := h.CreateInstance("div", fiber.Props{
		"class": "box",
		"style": map[string]string{"color": "red", "display": "block"},
	})
	h.AppendInitialChild(div, h.CreateTextInstance("a < b"))
	h.AppendInitialChild(div, h.CreateInstance("br", nil))
	h.AppendChildToContainer(div, root)

	assert.Equal(t, `<div class="box" style="color:red;display:block">a &lt; b<br></div>`, root.HTML())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteHTMLReportsWriteError(t *testing.T) {
	h := memdom.NewHost()
	root := memdom.NewContainer()
	h.AppendChildToContainer(h.CreateInstance("p", nil), root)
	assert.EqualError(t, memdom.WriteHTML(failingWriter{}, root), "disk full")
}

func TestSnapshotAndFind(t *testing.T) {
	h := memdom.NewHost()
	root := memdom.NewContainer()
	ul := h.CreateInstance("ul", fiber.Props{"id": "list"})
	li := h.CreateInstance("li", nil)
	h.AppendInitialChild(li, h.CreateTextInstance("one"))
	h.AppendInitialChild(ul, li)
	h.AppendChildToContainer(ul, root)

	require.NotNil(t, root.Find("list"))
	assert.Nil(t, root.Find("missing"))

	want := memdom.Snapshot{
		Type: "#root",
		Children: []memdom.Snapshot{{
			Type:  "ul",
			Props: map[string]any{"id": "list"},
			Children: []memdom.Snapshot{{
				Type:     "li",
				Children: []memdom.Snapshot{{Type: "#text", Text: "one"}},
			}},
		}},
	}
	if diff := cmp.Diff(want, root.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
