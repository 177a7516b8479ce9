package mergefield

import (
	"errors"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xpath"
)

var errNoAnchor = errors.New("field has no anchor")

// anchor is a weak reference to a node: a path, the base a relative path is
// resolved against, and the node it resolved to last.
type anchor struct {
	path string
	base string
	node *etree.Element
}

func anchorAt(e *etree.Element) anchor {
	return anchor{path: xpath.Of(e), node: e}
}

func (a *anchor) resolve(doc *etree.Document) (*etree.Element, error) {
	if a.node != nil {
		return a.node, nil
	}
	if a.path == "" {
		return nil, errNoAnchor
	}
	e, err := xpath.ResolveFrom(doc, a.path, a.base)
	if err != nil {
		return nil, err
	}
	a.node = e
	return e, nil
}

// Path returns the absolute location the anchor denotes right now.
func (a *anchor) Path() string {
	if a.node != nil {
		if p := xpath.Of(a.node); p != "" {
			return p
		}
	}
	abs, err := xpath.Absolute(a.path, a.base)
	if err != nil {
		return a.path
	}
	return abs
}

// rebase points the anchor at path relative to base and drops the cache.
func (a *anchor) rebase(path, base string) {
	a.path, a.base, a.node = path, base, nil
}

// Field is one marker occurrence in the document: a parsed instruction and
// the range between its start and end nodes.
type Field struct {
	// Code is the first instruction token, e.g. MERGEFIELD.
	Code string
	// Default is the text displayed at the marker site.
	Default string
	// Extra holds the positional instruction tokens after Code.
	Extra []string
	// Format maps a switch name (without the backslash) to its arguments.
	Format map[string][]string

	doc   *etree.Document
	start anchor
	end   anchor
	done  bool
}

func newField(doc *xml.Document, start *etree.Element) *Field {
	return &Field{
		Format: make(map[string][]string),
		doc:    doc.Tree,
		start:  anchorAt(start),
	}
}

// Start resolves the node where the field begins.
func (f *Field) Start() (*etree.Element, error) {
	return f.resolve(&f.start)
}

// End resolves the node where the field ends.
func (f *Field) End() (*etree.Element, error) {
	return f.resolve(&f.end)
}

func (f *Field) resolve(a *anchor) (*etree.Element, error) {
	e, err := a.resolve(f.doc)
	if err != nil {
		if errors.Is(err, xpath.ErrMalformedPath) {
			return nil, &ParseError{Message: "malformed anchor path", Text: f.Default, Location: a.path, Cause: err}
		}
		return nil, err
	}
	if e == nil {
		return nil, &AnchorError{Field: f.String(), Path: a.Path()}
	}
	return e, nil
}

// StartPath returns the absolute path of the start node.
func (f *Field) StartPath() string { return f.start.Path() }

// EndPath returns the absolute path of the end node.
func (f *Field) EndPath() string { return f.end.Path() }

// Rebase re-homes both anchors: start and end are paths relative to base.
func (f *Field) Rebase(start, end, base string) {
	f.start.rebase(start, base)
	f.end.rebase(end, base)
}

// Done reports whether the field has been replaced or removed.
func (f *Field) Done() bool { return f.done }

// Command returns the first positional token, e.g. "$name" or "#end".
func (f *Field) Command() string {
	if len(f.Extra) == 0 {
		return ""
	}
	return f.Extra[0]
}

// String renders the instruction in canonical form.
func (f *Field) String() string {
	parts := append([]string{f.Code}, f.Extra...)
	switches := make([]string, 0, len(f.Format))
	for k := range f.Format {
		switches = append(switches, k)
	}
	sort.Strings(switches)
	for _, k := range switches {
		parts = append(parts, `\`+k)
		parts = append(parts, f.Format[k]...)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// clone copies the instruction; anchors are left empty.
func (f *Field) clone() *Field {
	c := &Field{
		Code:    f.Code,
		Default: f.Default,
		Extra:   append([]string(nil), f.Extra...),
		Format:  make(map[string][]string, len(f.Format)),
		doc:     f.doc,
	}
	for k, v := range f.Format {
		c.Format[k] = append([]string(nil), v...)
	}
	return c
}
