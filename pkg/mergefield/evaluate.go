package mergefield

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xpath"
)

// Evaluate extracts the fields of doc, nests them into an evaluation tree and
// renders it against ctx. The document is modified in place.
func Evaluate(doc *xml.Document, ctx *Context, opts ...RenderOption) error {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	ro := newRenderOptions(opts)
	fields, err := ExtractFields(doc)
	if err != nil {
		return err
	}
	root, err := BuildTree(fields, ro.keyword)
	if err != nil {
		return err
	}
	ev := &evaluator{renderer: newRenderer(doc, ro), logger: ro.logger}
	return ev.nodes(root.Children, ctx)
}

type evaluator struct {
	renderer *Renderer
	logger   *Logger
}

func (ev *evaluator) nodes(nodes []Node, ctx *Context) error {
	for _, n := range nodes {
		if err := ev.node(n, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) node(n Node, ctx *Context) error {
	switch n := n.(type) {
	case *Variable:
		return ev.variable(n, ctx)
	case *If:
		return ev.cond(n, ctx)
	case *ForEach:
		return ev.loop(n, ctx)
	}
	panic(fmt.Sprintf("mergefield: unknown node %T", n))
}

// inert downgrades anchor misses to warnings.
func (ev *evaluator) inert(err error) error {
	if err == nil || !IsAnchorError(err) {
		return err
	}
	ev.logger.Warn("%v", err)
	return nil
}

func (ev *evaluator) variable(v *Variable, ctx *Context) error {
	if v.Field.Done() {
		return nil
	}
	ev.logger.DebugField("substituting", v.Field)
	return ev.inert(v.Field.Replace(ctx.Resolve(v.Path), ev.renderer))
}

func (ev *evaluator) cond(n *If, ctx *Context) error {
	if n.Start.Done() {
		return nil
	}
	ok, err := EvaluateCondition(n.Src, ctx)
	if err != nil {
		return err
	}
	if ok {
		if err := ev.nodes(n.Children, ctx); err != nil {
			return err
		}
		return ev.strip(&n.Container)
	}

	content, _, err := n.content()
	if err != nil {
		return ev.inert(err)
	}
	ev.discard(&n.Container, content)
	return ev.strip(&n.Container)
}

func (ev *evaluator) loop(n *ForEach, ctx *Context) error {
	if n.Start.Done() {
		return nil
	}
	value := ctx.Resolve(n.Src)
	items, ok := toSequence(value)
	if !ok && value != nil {
		ev.logger.Warn("%s: $%s is a %T, not a sequence", n.String(), n.Src, value)
	}

	content, boundary, err := n.content()
	if err != nil {
		return ev.inert(err)
	}
	if len(items) == 0 {
		ev.discard(&n.Container, content)
		return ev.strip(&n.Container)
	}

	snap, err := ev.takeSnapshot(n, content)
	if err != nil {
		return err
	}
	for i, item := range items {
		vars := Data{
			n.Dest: item,
			"foreach": Data{
				"index":   i,
				"isFirst": i == 0,
				"isLast":  i == len(items)-1,
				"hasNext": i < len(items)-1,
			},
		}
		if i == 0 {
			var root *etree.Element
			if len(content) > 0 {
				root = content[0]
			}
			if err := ev.nodes(n.Children, ctx.Child(vars, root)); err != nil {
				return err
			}
			continue
		}
		if !xpath.Attached(boundary) {
			ev.logger.Warn("%s: closing marker was detached, stopping after %d iterations", n.String(), i)
			break
		}
		children, root, err := snap.instantiate(boundary, &n.Container)
		if err != nil {
			if err = ev.inert(err); err != nil {
				return err
			}
			continue
		}
		if err := ev.nodes(children, ctx.Child(vars, root)); err != nil {
			return err
		}
	}
	return ev.strip(&n.Container)
}

// content returns the element siblings strictly between the end of the
// opening marker and the start of the closing marker, and the sibling that
// holds the closing marker. Markers already detached yield no content.
func (c *Container) content() ([]*etree.Element, *etree.Element, error) {
	a, err := c.Start.End()
	if err != nil {
		return nil, nil, err
	}
	b, err := c.End.Start()
	if err != nil {
		return nil, nil, err
	}
	if !xpath.Attached(a) || !xpath.Attached(b) {
		return nil, nil, nil
	}
	first, last, err := xpath.SplitAt(a, b)
	if err != nil {
		return nil, nil, &ParseError{Message: "markers do not delimit a range: " + err.Error(), Text: c.Start.Default, Location: c.Start.StartPath()}
	}

	var out []*etree.Element
	inside := false
	for _, e := range first.Parent().ChildElements() {
		if e == last {
			break
		}
		if inside {
			out = append(out, e)
		}
		if e == first {
			inside = true
		}
	}
	return out, last, nil
}

// discard removes the content of c and any of its fields left attached
// outside of it.
func (ev *evaluator) discard(c *Container, content []*etree.Element) {
	for _, e := range content {
		xml.Detach(e)
	}
	for _, child := range c.Children {
		walkFields(child, func(f *Field) {
			if f.Done() {
				return
			}
			if err := f.Remove(); err != nil {
				ev.logger.Debug("dropping field %s: %v", f.String(), err)
			}
		})
	}
}

// strip removes the opening and closing markers of c.
func (ev *evaluator) strip(c *Container) error {
	if err := ev.inert(c.Start.Remove()); err != nil {
		return err
	}
	return ev.inert(c.End.Remove())
}

// snapshot is the loop body as it was before the first iteration: copies of
// the content elements and, for every field inside them, its anchors
// relative to the first content element.
type snapshot struct {
	elements []*etree.Element
	children []Node
	anchors  [][2]string
}

func (ev *evaluator) takeSnapshot(n *ForEach, content []*etree.Element) (*snapshot, error) {
	s := &snapshot{}
	if len(content) == 0 {
		return s, nil
	}
	for _, e := range content {
		s.elements = append(s.elements, e.Copy())
	}
	base := xpath.Of(content[0])

	for _, child := range n.Children {
		var anchors [][2]string
		var fatal error
		inside, missing := true, false
		walkFields(child, func(f *Field) {
			if !inside || fatal != nil {
				return
			}
			var end *etree.Element
			start, err := f.Start()
			if err == nil {
				end, err = f.End()
			}
			if err != nil {
				fatal = ev.inert(err)
				inside, missing = false, true
				return
			}
			if start == nil || end == nil || !xpath.Within(start, content) || !xpath.Within(end, content) {
				inside = false
				return
			}
			sp, err1 := xpath.Relative(f.StartPath(), base)
			ep, err2 := xpath.Relative(f.EndPath(), base)
			if err1 != nil || err2 != nil {
				inside = false
				return
			}
			anchors = append(anchors, [2]string{sp, ep})
		})
		if fatal != nil {
			return nil, fatal
		}
		if !inside {
			if !missing {
				ev.logger.Debug("%s: %s lies outside the loop body, rendering it once", n.String(), child.String())
			}
			continue
		}
		s.children = append(s.children, child)
		s.anchors = append(s.anchors, anchors...)
	}
	return s, nil
}

// instantiate splices a copy of the snapshot before boundary and returns
// cloned children anchored in the copy, with all anchors resolved.
func (s *snapshot) instantiate(boundary *etree.Element, parent *Container) ([]Node, *etree.Element, error) {
	if len(s.elements) == 0 {
		return nil, nil, nil
	}
	var first *etree.Element
	for _, e := range s.elements {
		c := e.Copy()
		xml.InsertBefore(boundary, c)
		if first == nil {
			first = c
		}
	}
	base := xpath.Of(first)

	children := make([]Node, 0, len(s.children))
	var fields []*Field
	for _, child := range s.children {
		clone := cloneNode(child, parent)
		walkFields(clone, func(f *Field) { fields = append(fields, f) })
		children = append(children, clone)
	}
	for i, f := range fields {
		f.Rebase(s.anchors[i][0], s.anchors[i][1], base)
	}
	for _, f := range fields {
		if _, err := f.Start(); err != nil {
			return nil, nil, err
		}
		if _, err := f.End(); err != nil {
			return nil, nil, err
		}
	}
	return children, first, nil
}
