// Package dom is a small query and mutation layer over golang.org/x/net/html
// trees. It covers the parts of the page markup the interaction layer reads and
// edits: ids, classes, data attributes, form controls.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps the root of a parsed fragment or page.
type Document struct {
	Root *html.Node
}

// ParseFragment parses a server-rendered partial document. The returned
// document root is a synthetic <div> holding the fragment nodes.
func ParseFragment(fragment string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{Root: root}, nil
}

// ParsePage parses a full page.
func ParsePage(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{Root: root}, nil
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	return Find(d.Root, ByID(id))
}

func (d *Document) FindAll(m Matcher) []*html.Node {
	return FindAll(d.Root, m)
}

// InnerHTML renders the document content without the synthetic root.
func (d *Document) InnerHTML() string {
	return RenderChildren(d.Root)
}

type Matcher func(n *html.Node) bool

// ByID matches elements whose id attribute equals id.
func ByID(id string) Matcher {
	return func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	}
}

func ByClass(class string) Matcher {
	return func(n *html.Node) bool {
		return HasClass(n, class)
	}
}

func ByTag(tag string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func ByAttr(key string) Matcher {
	return func(n *html.Node) bool {
		_, ok := Attr(n, key)
		return ok
	}
}

func ByAttrValue(key, value string) Matcher {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && v == value
	}
}

func And(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Find returns the first descendant of root (root excluded) matching m, in
// document order.
func Find(root *html.Node, m Matcher) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && m(c) {
			return c
		}
		if found := Find(c, m); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of root matching m, in document order.
func FindAll(root *html.Node, m Matcher) []*html.Node {
	var found []*html.Node
	Walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && m(n) {
			found = append(found, n)
		}
	})
	return found
}

// Walk visits the descendants of root in document order.
func Walk(root *html.Node, fn func(n *html.Node)) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		fn(c)
		Walk(c, fn)
	}
}

// Attr returns the value of a non-namespaced attribute and whether n has it.
// A nil node has no attributes.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func AttrOr(n *html.Node, key, fallback string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return fallback
}

// SetAttr sets the attribute, appending it when n does not carry it yet.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops the attribute and reports whether it was present.
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// SetText replaces all children of n with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Clone returns a deep copy of n, detached from any tree.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Detach removes n from its parent. It is a no-op for detached nodes.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Contains reports whether n is ancestor itself or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor of n (n included) matching m.
func Closest(n *html.Node, m Matcher) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && m(p) {
			return p
		}
	}
	return nil
}

// NewElement builds an element with attributes given as key/value pairs and
// an optional text child.
func NewElement(tag, text string, keyVals ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(keyVals); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: keyVals[i], Val: keyVals[i+1]})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// Render returns the markup of n itself, children included.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		// bytes.Buffer writes never fail, html.Render only errors on the writer
		return ""
	}
	return buf.String()
}

// RenderChildren returns the markup of the children of n without n itself.
func RenderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}
