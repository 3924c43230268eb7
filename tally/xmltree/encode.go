package xmltree

import (
	"fmt"
	"slices"
	"strings"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape replaces the five XML special characters with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// EscapeValue escapes strings and returns any other value unchanged.
func EscapeValue(v any) any {
	if s, ok := v.(string); ok {
		return Escape(s)
	}
	return v
}

// Marshal renders n without insignificant whitespace. A document node renders
// its children.
func Marshal(n *Node) string {
	var b strings.Builder
	writeNode(&b, n, "", 0)
	return b.String()
}

// MarshalIndent renders n with one element per line.
func MarshalIndent(n *Node, indent string) string {
	var b strings.Builder
	writeNode(&b, n, indent, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, indent string, depth int) {
	if n == nil {
		return
	}
	if n.Name == "" {
		for _, c := range n.Children {
			writeNode(b, c, indent, depth)
		}
		return
	}
	pad := strings.Repeat(indent, depth)
	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(Escape(a.Value))
		b.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		b.WriteString("/>")
		if indent != "" {
			b.WriteByte('\n')
		}
		return
	}
	b.WriteByte('>')
	b.WriteString(Escape(n.Text))
	if len(n.Children) > 0 {
		if indent != "" {
			b.WriteByte('\n')
		}
		for _, c := range n.Children {
			writeNode(b, c, indent, depth+1)
		}
		b.WriteString(pad)
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
	if indent != "" {
		b.WriteByte('\n')
	}
}

// MarshalValue renders a generic value (as produced by encoding/json or by
// Node.Map) to XML. Map keys become elements in sorted order, slices become
// repeated siblings, other values become escaped text. A leading underscore
// is dropped from tag names; "_attributes" and "_text" carry attributes and
// text as produced by Node.Map.
func MarshalValue(v any) string {
	var b strings.Builder
	switch t := v.(type) {
	case *Node:
		return Marshal(t)
	case map[string]any:
		for _, k := range sortedKeys(t) {
			writeValue(&b, k, t[k])
		}
	default:
		b.WriteString(textOf(v))
	}
	return b.String()
}

func writeValue(b *strings.Builder, key string, v any) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			writeValue(b, key, item)
		}
		return
	case []map[string]any:
		for _, item := range t {
			writeValue(b, key, item)
		}
		return
	case *Node:
		b.WriteString(Marshal(t))
		return
	}

	name := strings.TrimPrefix(key, "_")
	b.WriteByte('<')
	b.WriteString(name)
	obj, isObj := v.(map[string]any)
	if isObj {
		if attrs, ok := obj["_attributes"].(map[string]any); ok {
			for _, k := range sortedKeys(attrs) {
				b.WriteByte(' ')
				b.WriteString(k)
				b.WriteString(`="`)
				b.WriteString(textOf(attrs[k]))
				b.WriteByte('"')
			}
		}
	}
	b.WriteByte('>')
	if isObj {
		if text, ok := obj["_text"]; ok {
			b.WriteString(textOf(text))
		}
		for _, k := range sortedKeys(obj) {
			if k == "_attributes" || k == "_text" {
				continue
			}
			writeValue(b, k, obj[k])
		}
	} else {
		b.WriteString(textOf(v))
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Escape(t)
	case fmt.Stringer:
		return Escape(t.String())
	}
	return fmt.Sprint(EscapeValue(v))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
