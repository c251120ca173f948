package rawdoc

import "strings"

// Attr is a single attribute. Name keeps its prefix as written ("user:ui-builder").
type Attr struct {
	Name  string
	Value string
}

// Node is an element of the document tree.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string // character data directly inside the element, verbatim
	Children []*Node
}

// Attr returns the value of the named attribute.
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

// AttrOr returns the named attribute, or def when it is absent or empty.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok && v != "" {
		return v
	}
	return def
}

// HasAttr reports whether the attribute exists.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// TrimmedText returns Text without surrounding whitespace.
func (n *Node) TrimmedText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// Child returns the first direct child with the given tag.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns the direct children with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in document order.
// The subtree below a node is skipped when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Descendants returns every node below n with the given tag, in document order.
func (n *Node) Descendants(tag string) []*Node {
	var out []*Node
	if n == nil {
		return out
	}
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if d.Tag == tag {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Path follows a chain of child tags and returns every node at the end of it.
// root.Path("datasources", "datasource") yields all datasource elements.
func (n *Node) Path(tags ...string) []*Node {
	if n == nil {
		return nil
	}
	current := []*Node{n}
	for _, tag := range tags {
		var next []*Node
		for _, c := range current {
			next = append(next, c.ChildrenByTag(tag)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// First returns the first node at the end of the tag chain, or nil.
func (n *Node) First(tags ...string) *Node {
	if nodes := n.Path(tags...); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// Map renders the subtree as nested maps for debugging dumps.
func (n *Node) Map() map[string]any {
	if n == nil {
		return nil
	}
	m := map[string]any{"tag": n.Tag}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		m["attrs"] = attrs
	}
	if text := n.TrimmedText(); text != "" {
		m["text"] = text
	}
	if len(n.Children) > 0 {
		children := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, c.Map())
		}
		m["children"] = children
	}
	return m
}
