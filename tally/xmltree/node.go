// Package xmltree converts between Tally XML and an ordered element tree.
//
// A parsed document is a *Node with an empty Name whose children are the
// top-level elements, so Find("RESPONSE", "CREATED") mirrors the path of the
// equivalent JSON object {RESPONSE: {CREATED: ...}}.
package xmltree

import "strings"

// Attr is one attribute; order is preserved on output.
type Attr struct {
	Name  string
	Value string
}

// Node is an element. Text holds the element's direct character data.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// El builds an element with children.
func El(name string, children ...*Node) *Node {
	n := &Node{Name: name}
	return n.Append(children...)
}

// Leaf builds an element holding only text.
func Leaf(name, text string) *Node {
	return &Node{Name: name, Text: text}
}

// Append adds children, skipping nil ones, and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// WithAttr sets an attribute and returns n.
func (n *Node) WithAttr(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child called name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child called name. One child and many children both come
// back as a slice, so callers never branch on cardinality.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find follows path through first children.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, p := range path {
		cur = cur.Child(p)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FindAll follows path through every repeated element on the way, e.g.
// FindAll("TALLYMESSAGE", "LEDGER") collects the ledgers of all messages.
func (n *Node) FindAll(path ...string) []*Node {
	if n == nil {
		return nil
	}
	level := []*Node{n}
	for _, p := range path {
		var next []*Node
		for _, cur := range level {
			next = append(next, cur.All(p)...)
		}
		if len(next) == 0 {
			return nil
		}
		level = next
	}
	return level
}

// Value is the trimmed text of n; empty for nil.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// ChildValue is Child(name).Value().
func (n *Node) ChildValue(name string) string {
	return n.Child(name).Value()
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Map converts n to the JSON-like shape: each child element becomes a key
// holding a map, or a []any when the element repeats; attributes go under
// "_attributes" and direct text under "_text".
func (n *Node) Map() map[string]any {
	out := map[string]any{}
	if n == nil {
		return out
	}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]any, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		out["_attributes"] = attrs
	}
	if t := strings.TrimSpace(n.Text); t != "" {
		out["_text"] = t
	}
	for _, c := range n.Children {
		m := c.Map()
		switch prev := out[c.Name].(type) {
		case nil:
			out[c.Name] = m
		case []any:
			out[c.Name] = append(prev, m)
		default:
			out[c.Name] = []any{prev, m}
		}
	}
	return out
}
