package mergefield

import (
	"fmt"
	"regexp"
	"strings"
)

// NodeKind enumerates the evaluation tree node variants.
type NodeKind int

const (
	KindVariable NodeKind = iota
	KindIf
	KindForEach
)

func (k NodeKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindIf:
		return "if"
	case KindForEach:
		return "foreach"
	default:
		return "unknown"
	}
}

// Node is a *Variable, *If or *ForEach.
type Node interface {
	Kind() NodeKind
	String() string
	node()
}

// Container owns the nodes between an opening and a closing marker. The root
// container of a document has neither.
type Container struct {
	Children []Node
	Start    *Field
	End      *Field

	parent *Container
}

// Variable substitutes a context value for its field.
type Variable struct {
	Field *Field
	Path  string
}

// If keeps its content when Src evaluates to true and removes it otherwise.
type If struct {
	Container
	Src string
}

// ForEach repeats its content once per element of the sequence at Src,
// binding each element to Dest.
type ForEach struct {
	Container
	Src  string
	Dest string
}

func (*Variable) Kind() NodeKind { return KindVariable }
func (*If) Kind() NodeKind       { return KindIf }
func (*ForEach) Kind() NodeKind  { return KindForEach }

func (*Variable) node() {}
func (*If) node()       {}
func (*ForEach) node()  {}

func (v *Variable) String() string { return "$" + v.Path }
func (n *If) String() string       { return fmt.Sprintf("#if(%s)", n.Src) }
func (n *ForEach) String() string  { return fmt.Sprintf("#foreach($%s in $%s)", n.Dest, n.Src) }

var (
	foreachRe = regexp.MustCompile(`^foreach\(\s*\$?(\S+)\s+in\s+\$(.+?)\s*\)$`)
	ifRe      = regexp.MustCompile(`^if\((.+)\)$`)
)

// BuildTree nests command fields into an evaluation tree. Only fields whose
// code equals keyword (case-insensitively) and whose first argument starts
// with $ or # are commands; everything else is ignored.
func BuildTree(fields []*Field, keyword string) (*Container, error) {
	root := &Container{}
	cur := root

	for _, f := range fields {
		if !strings.EqualFold(f.Code, keyword) || len(f.Extra) == 0 {
			continue
		}
		cmd := f.Extra[0]
		switch {
		case strings.HasPrefix(cmd, "$"):
			if err := checkAnchors(f); err != nil {
				return nil, err
			}
			cur.Children = append(cur.Children, &Variable{Field: f, Path: cmd[1:]})

		case strings.HasPrefix(cmd, "#"):
			directive := joinDirective(f.Extra)[1:]
			if directive != "end" && !strings.HasPrefix(directive, "foreach(") && !strings.HasPrefix(directive, "if(") {
				Warn("ignoring unknown directive %q at %s", cmd, f.StartPath())
				continue
			}
			if err := checkAnchors(f); err != nil {
				return nil, err
			}
			next, err := directiveNode(cur, f, directive)
			if err != nil {
				return nil, err
			}
			cur = next
		}
	}

	if cur != root {
		return nil, &ParseError{
			Message:  "missing #end for container",
			Text:     cur.Start.Default,
			Location: cur.Start.StartPath(),
		}
	}
	return root, nil
}

// directiveNode applies an opening or closing directive and returns the new
// current container.
func directiveNode(cur *Container, f *Field, directive string) (*Container, error) {
	if directive == "end" {
		if cur.parent == nil {
			return nil, &ParseError{Message: "#end without an open container", Text: f.Default, Location: f.StartPath()}
		}
		cur.End = f
		return cur.parent, nil
	}
	if m := foreachRe.FindStringSubmatch(directive); m != nil {
		n := &ForEach{Container: Container{Start: f, parent: cur}, Dest: m[1], Src: m[2]}
		cur.Children = append(cur.Children, n)
		return &n.Container, nil
	}
	if m := ifRe.FindStringSubmatch(directive); m != nil {
		n := &If{Container: Container{Start: f, parent: cur}, Src: strings.TrimSpace(m[1])}
		cur.Children = append(cur.Children, n)
		return &n.Container, nil
	}
	return nil, &ParseError{Message: "malformed directive #" + directive, Text: f.Default, Location: f.StartPath()}
}

// joinDirective rejoins a directive split on whitespace, up to the token
// that balances its parentheses.
func joinDirective(extra []string) string {
	out := extra[0]
	depth := strings.Count(out, "(") - strings.Count(out, ")")
	for i := 1; i < len(extra) && depth > 0; i++ {
		out += " " + extra[i]
		depth += strings.Count(extra[i], "(") - strings.Count(extra[i], ")")
	}
	return out
}

// checkAnchors resolves both boundaries of a command field; a field that
// cannot be located is unsafe to evaluate.
func checkAnchors(f *Field) error {
	if _, err := f.Start(); err != nil {
		return &ParseError{Message: "start of field not found", Text: f.Default, Location: f.StartPath(), Cause: err}
	}
	if _, err := f.End(); err != nil {
		return &ParseError{Message: "end of field not found", Text: f.Default, Location: f.EndPath(), Cause: err}
	}
	return nil
}

// walkFields visits every field under n in a fixed order.
func walkFields(n Node, fn func(*Field)) {
	switch n := n.(type) {
	case *Variable:
		fn(n.Field)
	case *If:
		walkContainer(&n.Container, fn)
	case *ForEach:
		walkContainer(&n.Container, fn)
	}
}

func walkContainer(c *Container, fn func(*Field)) {
	if c.Start != nil {
		fn(c.Start)
	}
	for _, child := range c.Children {
		walkFields(child, fn)
	}
	if c.End != nil {
		fn(c.End)
	}
}

// cloneNode copies n with fresh fields; anchors must be rebased afterwards.
func cloneNode(n Node, parent *Container) Node {
	switch n := n.(type) {
	case *Variable:
		return &Variable{Field: n.Field.clone(), Path: n.Path}
	case *If:
		c := &If{Src: n.Src}
		cloneContainer(&c.Container, &n.Container, parent)
		return c
	case *ForEach:
		c := &ForEach{Src: n.Src, Dest: n.Dest}
		cloneContainer(&c.Container, &n.Container, parent)
		return c
	}
	panic(fmt.Sprintf("mergefield: unknown node %T", n))
}

func cloneContainer(dst, src *Container, parent *Container) {
	dst.parent = parent
	if src.Start != nil {
		dst.Start = src.Start.clone()
	}
	if src.End != nil {
		dst.End = src.End.clone()
	}
	for _, child := range src.Children {
		dst.Children = append(dst.Children, cloneNode(child, dst))
	}
}
