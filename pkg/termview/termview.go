// Package termview draws a memdom tree as styled terminal text.
package termview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

var inlineTypes = map[string]bool{
	"span": true, "b": true, "strong": true, "i": true, "em": true, "u": true, "a": true, "code": true,
}

type View struct {
	width    int
	renderer *lipgloss.Renderer
}

type Option func(*View)

// WithWidth caps every text run at w columns. Zero means unlimited.
func WithWidth(w int) Option {
	return func(v *View) { v.width = w }
}

func WithRenderer(r *lipgloss.Renderer) Option {
	return func(v *View) { v.renderer = r }
}

func New(opts ...Option) *View {
	v := &View{width: 80, renderer: lipgloss.DefaultRenderer()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render lays out block elements one below the other and runs of text and
// inline elements side by side. Hidden elements are skipped.
func (v *View) Render(n *memdom.Node) string {
	return v.node(n, v.width)
}

func (v *View) node(n *memdom.Node, width int) string {
	switch n.Kind {
	case memdom.KindText:
		return truncate(n.Text, width)
	case memdom.KindRoot:
		return v.children(n, width)
	}
	if n.Hidden() {
		return ""
	}

	style := v.styleFor(n)
	inner := width
	if width > 0 {
		inner = max(1, width-style.GetHorizontalFrameSize())
	}
	body := v.children(n, inner)
	if n.Type == "li" {
		body = "• " + body
	}
	if body == "" && style.GetHorizontalFrameSize() == 0 {
		return ""
	}
	return style.Render(body)
}

func (v *View) children(n *memdom.Node, width int) string {
	var lines, run []string
	flush := func() {
		if len(run) > 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, run...))
			run = nil
		}
	}
	for _, c := range n.Children {
		s := v.node(c, width)
		if c.Kind == memdom.KindText || inlineTypes[c.Type] {
			if s != "" {
				run = append(run, s)
			}
			continue
		}
		flush()
		if s != "" {
			lines = append(lines, s)
		}
	}
	flush()
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *View) styleFor(n *memdom.Node) lipgloss.Style {
	s := v.renderer.NewStyle()
	switch n.Type {
	case "b", "strong", "h1", "h2", "h3", "th":
		s = s.Bold(true)
	case "i", "em":
		s = s.Italic(true)
	case "u":
		s = s.Underline(true)
	}
	if c := n.Style["color"]; c != "" {
		s = s.Foreground(lipgloss.Color(c))
	}
	if bg := n.Style["background"]; bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	switch n.Style["border"] {
	case "rounded":
		s = s.Border(lipgloss.RoundedBorder())
	case "normal", "solid":
		s = s.Border(lipgloss.NormalBorder())
	case "thick":
		s = s.Border(lipgloss.ThickBorder())
	}
	if p, ok := cells(n.Style["padding"]); ok {
		s = s.Padding(0, p)
	}
	return s
}

// cells parses "2" or "2px" as a column count.
func cells(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "px"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}
