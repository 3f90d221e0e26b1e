package form

import (
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/dom"

	"golang.org/x/net/html"
)

type Kind int

const (
	KindInput Kind = iota
	KindSelect
	KindTextArea
)

type Option struct {
	Value  string
	Label  string
	Marked bool
	node   *html.Node
}

// Data returns the option's data-* attribute.
func (o Option) Data(key string) string {
	return dom.AttrOr(o.node, key, "")
}

// Control is the live state of one input, select or textarea.
type Control struct {
	node *html.Node

	Kind     Kind
	Name     string
	Type     string
	Value    string
	Checked  bool
	Selected int
	Options  []Option
}

func newControl(n *html.Node) *Control {
	c := &Control{
		node: n,
		Name: dom.AttrOr(n, "name", ""),
	}
	switch n.Data {
	case "select":
		c.Kind = KindSelect
		for _, on := range dom.FindAll(n, dom.ByTag("option")) {
			label := strings.TrimSpace(dom.Text(on))
			_, marked := dom.Attr(on, "selected")
			c.Options = append(c.Options, Option{
				Value:  dom.AttrOr(on, "value", label),
				Label:  label,
				Marked: marked,
				node:   on,
			})
		}
	case "textarea":
		c.Kind = KindTextArea
	default:
		c.Kind = KindInput
		c.Type = trimmedLower(dom.AttrOr(n, "type", "text"))
	}
	c.Reset()
	return c
}

func (c *Control) Node() *html.Node {
	return c.node
}

// Default is the markup default: value attribute for inputs, text for
// textareas, marked option value for selects.
func (c *Control) Default() string {
	switch c.Kind {
	case KindSelect:
		if i := c.DefaultIndex(); i >= 0 {
			return c.Options[i].Value
		}
		return ""
	case KindTextArea:
		return dom.Text(c.node)
	default:
		return dom.AttrOr(c.node, "value", "")
	}
}

// DefaultIndex is the index of the marked option, 0 if none is marked and -1
// for empty selects.
func (c *Control) DefaultIndex() int {
	if len(c.Options) == 0 {
		return -1
	}
	for i, o := range c.Options {
		if o.Marked {
			return i
		}
	}
	return 0
}

// Reset drops the live state back to the markup defaults.
func (c *Control) Reset() {
	c.Value = c.Default()
	c.Selected = c.DefaultIndex()
	_, c.Checked = dom.Attr(c.node, "checked")
}

// Current returns the live value.
func (c *Control) Current() string {
	if c.Kind == KindSelect {
		if c.Selected < 0 || c.Selected >= len(c.Options) {
			return ""
		}
		return c.Options[c.Selected].Value
	}
	return c.Value
}

func (c *Control) SelectedOption() (Option, bool) {
	if c.Kind != KindSelect || c.Selected < 0 || c.Selected >= len(c.Options) {
		return Option{}, false
	}
	return c.Options[c.Selected], true
}

// SetValue sets the live value. Selects pick the first option with a matching
// value.
func (c *Control) SetValue(v string) error {
	if c.Kind != KindSelect {
		c.Value = v
		return nil
	}
	for i, o := range c.Options {
		if o.Value == v {
			c.Selected = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q", ErrOptionNotFound, c.Name, v)
}

// Step returns the step constraint of an input.
func (c *Control) Step() (string, bool) {
	return dom.Attr(c.node, "step")
}

func (c *Control) Disabled() bool {
	_, disabled := dom.Attr(c.node, "disabled")
	return disabled
}

func (c *Control) submitValue() (string, bool) {
	if c.Name == "" || c.Disabled() {
		return "", false
	}
	switch c.Kind {
	case KindSelect:
		if _, ok := c.SelectedOption(); !ok {
			return "", false
		}
		return c.Current(), true
	case KindTextArea:
		return c.Value, true
	}

	switch c.Type {
	case "submit", "button", "reset", "image", "file":
		return "", false
	case "checkbox", "radio":
		if !c.Checked {
			return "", false
		}
		return dom.AttrOr(c.node, "value", "on"), true
	}
	return c.Value, true
}

// writeTo serializes the live state into a copy of the control node.
func (c *Control) writeTo(n *html.Node) {
	switch c.Kind {
	case KindSelect:
		i := 0
		for o := n.FirstChild; o != nil; o = o.NextSibling {
			writeOptions(o, c.Selected, &i)
		}
	case KindTextArea:
		dom.SetText(n, c.Value)
	default:
		switch c.Type {
		case "checkbox", "radio":
			if c.Checked {
				dom.SetAttr(n, "checked", "")
			} else {
				dom.RemoveAttr(n, "checked")
			}
		default:
			dom.SetAttr(n, "value", c.Value)
		}
	}
}

func writeOptions(n *html.Node, selected int, i *int) {
	if n.Type != html.ElementNode {
		return
	}
	if n.Data == "option" {
		if *i == selected {
			dom.SetAttr(n, "selected", "")
		} else {
			dom.RemoveAttr(n, "selected")
		}
		*i++
		return
	}
	// optgroup
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeOptions(c, selected, i)
	}
}
