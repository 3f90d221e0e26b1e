package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/dom"

	"golang.org/x/net/html"
)

var (
	ErrFormNotFound    = errors.New("form not found")
	ErrControlNotFound = errors.New("form control not found")
	ErrOptionNotFound  = errors.New("select option not found")
)

// Value is a single successful control entry, in document order.
type Value struct {
	Name  string
	Value string
}

// Form binds a <form> element of a parsed document to the live state of its
// controls. Markup attributes hold defaults, live values are kept on the
// controls and only written back to markup when rendering.
type Form struct {
	doc      *dom.Document
	node     *html.Node
	controls map[*html.Node]*Control
}

// Parse parses the fragment and binds the form with the given id. An empty id
// binds the first form of the fragment.
func Parse(fragment, formID string) (*Form, error) {
	doc, err := dom.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return Bind(doc, formID)
}

func Bind(doc *dom.Document, formID string) (*Form, error) {
	var n *html.Node
	if formID == "" {
		n = dom.Find(doc.Root, dom.ByTag("form"))
	} else {
		n = dom.Find(doc.Root, dom.And(dom.ByTag("form"), dom.ByID(formID)))
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}

	return &Form{
		doc:      doc,
		node:     n,
		controls: make(map[*html.Node]*Control),
	}, nil
}

func (f *Form) ID() string {
	return dom.AttrOr(f.node, "id", "")
}

func (f *Form) Node() *html.Node {
	return f.node
}

func (f *Form) Document() *dom.Document {
	return f.doc
}

// Control returns the live control bound to n, creating it from the markup
// defaults on first access. It returns nil for non-control nodes.
func (f *Form) Control(n *html.Node) *Control {
	if !isControl(n) {
		return nil
	}
	if c, ok := f.controls[n]; ok {
		return c
	}
	c := newControl(n)
	f.controls[n] = c
	return c
}

// Release forgets the live state of every control under subtree.
func (f *Form) Release(subtree *html.Node) {
	delete(f.controls, subtree)
	dom.Walk(subtree, func(n *html.Node) {
		delete(f.controls, n)
	})
}

// Controls returns the controls attached to the form, in document order.
func (f *Form) Controls() []*Control {
	return f.ControlsIn(f.node)
}

// ControlsIn returns the controls under subtree, in document order.
func (f *Form) ControlsIn(subtree *html.Node) []*Control {
	var controls []*Control
	dom.Walk(subtree, func(n *html.Node) {
		if c := f.Control(n); c != nil {
			controls = append(controls, c)
		}
	})
	return controls
}

// Field returns the first control with the given name.
func (f *Form) Field(name string) *Control {
	for _, c := range f.Controls() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Set sets the live value of the first control with the given name.
func (f *Form) Set(name, value string) error {
	c := f.Field(name)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrControlNotFound, name)
	}
	return c.SetValue(value)
}

// Values returns the form data set as a browser would submit it.
func (f *Form) Values() []Value {
	var values []Value
	for _, c := range f.Controls() {
		if v, ok := c.submitValue(); ok {
			values = append(values, Value{Name: c.Name, Value: v})
		}
	}
	return values
}

// Render returns the document HTML with live control state written into the
// markup. The bound document itself is left untouched.
func (f *Form) Render() string {
	mapping := make(map[*html.Node]*html.Node)
	root := cloneMapped(f.doc.Root, mapping)
	for orig, c := range f.controls {
		if clone, ok := mapping[orig]; ok {
			c.writeTo(clone)
		}
	}
	return dom.RenderChildren(root)
}

func cloneMapped(n *html.Node, mapping map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	mapping[n] = c
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneMapped(child, mapping))
	}
	return c
}

// RelaxWeightSteps removes the step constraint from every weight input of the
// form document, so arbitrary decimals pass native validation. It returns the
// number of inputs that had a step.
func RelaxWeightSteps(doc *dom.Document) int {
	relaxed := 0
	weightInputs := doc.FindAll(dom.And(
		dom.ByTag("input"),
		dom.ByAttrValue("name", "weight"),
	))
	for _, n := range weightInputs {
		if dom.RemoveAttr(n, "step") {
			relaxed++
		}
	}
	return relaxed
}

func isControl(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "input", "select", "textarea":
		return true
	}
	return false
}

func trimmedLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ControlOf returns a standalone live control for a node outside any bound
// form, such as the page filter selects. It returns nil for non-control nodes.
func ControlOf(n *html.Node) *Control {
	if !isControl(n) {
		return nil
	}
	return newControl(n)
}
