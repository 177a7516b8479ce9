package xpath

import (
	"fmt"

	"github.com/beevik/etree"
)

// Of returns the absolute path of e, or "" if e is not attached to a document.
func Of(e *etree.Element) string {
	var steps []Step
	for cur := e; cur != nil; {
		parent := cur.Parent()
		if parent == nil {
			if isDocument(cur) && len(steps) > 0 {
				break
			}
			return ""
		}
		steps = append(steps, Step{Tag: cur.FullTag(), Index: position(parent, cur)})
		cur = parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Path{Absolute: true, Steps: steps}.String()
}

// Resolve looks up an absolute path in doc. A well-formed path that does not
// denote an element yields nil and no error.
func Resolve(doc *etree.Document, path string) (*etree.Element, error) {
	p, err := parseAbsolute(path)
	if err != nil {
		return nil, err
	}
	cur := &doc.Element
	for _, s := range p.Steps {
		children := cur.ChildElements()
		if s.Index > len(children) {
			return nil, nil
		}
		next := children[s.Index-1]
		if next.FullTag() != s.Tag {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

// ResolveFrom resolves a relative or absolute path against base.
func ResolveFrom(doc *etree.Document, path, base string) (*etree.Element, error) {
	abs, err := Absolute(path, base)
	if err != nil {
		return nil, err
	}
	return Resolve(doc, abs)
}

// Attached reports whether e is still reachable from a document node.
func Attached(e *etree.Element) bool {
	for cur := e; cur != nil; cur = cur.Parent() {
		if cur.Parent() == nil {
			return isDocument(cur)
		}
	}
	return false
}

// Within reports whether e is one of roots or a descendant of one of them.
func Within(e *etree.Element, roots []*etree.Element) bool {
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, r := range roots {
			if cur == r {
				return true
			}
		}
	}
	return false
}

// Ancestors returns e and its ancestors, innermost first, stopping before the
// document node.
func Ancestors(e *etree.Element) []*etree.Element {
	var out []*etree.Element
	for cur := e; cur != nil && !isDocument(cur); cur = cur.Parent() {
		out = append(out, cur)
	}
	return out
}

// SplitAt returns the children of the lowest common ancestor of a and b that
// contain a and b respectively.
func SplitAt(a, b *etree.Element) (*etree.Element, *etree.Element, error) {
	as, bs := Ancestors(a), Ancestors(b)
	seen := make(map[*etree.Element]int, len(as))
	for i, e := range as {
		seen[e] = i
	}
	for j, e := range bs {
		i, ok := seen[e]
		if !ok {
			continue
		}
		if i == 0 || j == 0 {
			return nil, nil, fmt.Errorf("%s encloses the other boundary", e.FullTag())
		}
		return as[i-1], bs[j-1], nil
	}
	return nil, nil, fmt.Errorf("elements %s and %s share no ancestor", a.FullTag(), b.FullTag())
}

func position(parent, child *etree.Element) int {
	n := 0
	for _, c := range parent.ChildElements() {
		n++
		if c == child {
			return n
		}
	}
	return 0
}

func isDocument(e *etree.Element) bool {
	return e.Parent() == nil && e.Tag == "" && e.Space == ""
}
