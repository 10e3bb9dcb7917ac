package memdom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/valyala/quicktemplate"
)

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

// WriteHTML serializes n. A root node writes only its children.
func WriteHTML(w io.Writer, n *Node) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	streamNode(qw, n)
	quicktemplate.ReleaseWriter(qw)
	return ew.err
}

// HTML is WriteHTML into a string.
func (n *Node) HTML() string {
	var buf bytes.Buffer
	_ = WriteHTML(&buf, n)
	return buf.String()
}

func streamNode(qw *quicktemplate.Writer, n *Node) {
	switch n.Kind {
	case KindText:
		qw.E().S(n.Text)
		return
	case KindRoot:
		for _, c := range n.Children {
			streamNode(qw, c)
		}
		return
	}

	qw.N().S("<")
	qw.N().S(n.Type)
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		streamAttr(qw, k, fmt.Sprint(n.Props[k]))
	}
	if style := styleAttr(n.Style); style != "" {
		streamAttr(qw, "style", style)
	}
	qw.N().S(">")
	if voidElements[n.Type] {
		return
	}
	for _, c := range n.Children {
		streamNode(qw, c)
	}
	qw.N().S("</")
	qw.N().S(n.Type)
	qw.N().S(">")
}

func streamAttr(qw *quicktemplate.Writer, k, v string) {
	qw.N().S(" ")
	qw.N().S(k)
	qw.N().S(`="`)
	qw.E().S(v)
	qw.N().S(`"`)
}

func styleAttr(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(";")
		}
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(style[k])
	}
	return sb.String()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
