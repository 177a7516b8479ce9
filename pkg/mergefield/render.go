package mergefield

import (
	"regexp"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xpath"
)

var markupRegex = regexp.MustCompile(`<[^<>]+>`)

// Renderer writes values into the ranges of fields of one document.
type Renderer struct {
	doc       *xml.Document
	styles    *xml.Styles
	strict    bool
	sequence  string
	providers []ImageProvider
	captions  map[string]int
	logger    *Logger
}

// NewRenderer creates a renderer for doc.
func NewRenderer(doc *xml.Document, opts ...RenderOption) *Renderer {
	return newRenderer(doc, newRenderOptions(opts))
}

func newRenderer(doc *xml.Document, ro *renderOptions) *Renderer {
	styles := ro.styles
	if styles == nil {
		styles = doc.Styles
	}
	return &Renderer{
		doc:       doc,
		styles:    styles,
		strict:    ro.strictStyles,
		sequence:  ro.sequence,
		providers: ro.providers,
		captions:  make(map[string]int),
		logger:    ro.logger,
	}
}

// Replace clears the field's range and renders value in its place.
func (f *Field) Replace(value interface{}, r *Renderer) error {
	run, err := f.clear()
	if err != nil {
		return err
	}
	f.done = true
	if run == nil {
		return nil
	}
	return r.insert(run, value)
}

// Remove clears the field and deletes its run. The enclosing paragraph goes
// too when nothing else is left in it and the document allows it.
func (f *Field) Remove() error {
	run, err := f.clear()
	if err != nil {
		return err
	}
	f.done = true
	if run == nil {
		return nil
	}
	p := run.Paragraph()
	run.Remove()
	if p != nil && !p.Detached() && p.IsEmpty() && p.Removable() {
		p.Remove()
	}
	return nil
}

// clear empties the field's range and returns the run left at its start. A
// field whose start was detached with its surroundings yields nil.
func (f *Field) clear() (*xml.Run, error) {
	start, err := f.Start()
	if err != nil {
		return nil, err
	}
	if !xpath.Attached(start) {
		return nil, nil
	}

	if start.Space == "w" && start.Tag == "fldSimple" {
		r := etree.NewElement("w:r")
		if rpr := start.FindElement("./r/rPr"); rpr != nil {
			r.AddChild(rpr.Copy())
		}
		xml.InsertBefore(start, r)
		xml.Detach(start)
		f.start, f.end = anchorAt(r), anchorAt(r)
		return xml.NewRun(r), nil
	}

	end, err := f.End()
	if err != nil {
		return nil, err
	}
	parent := start.Parent()
	switch {
	case end == start:
	case end.Parent() == parent:
		for _, sib := range following(start) {
			xml.Detach(sib)
			if sib == end {
				break
			}
		}
	case end.Parent() != nil:
		Warn("end of field %s is outside the paragraph of its start (%s)", f.String(), xpath.Of(end))
		xml.Detach(end)
	}

	run := xml.NewRun(start)
	run.Clear()
	f.end = anchorAt(start)
	return run, nil
}

// following returns the element siblings after e.
func following(e *etree.Element) []*etree.Element {
	parent := e.Parent()
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	seen := false
	for _, c := range parent.ChildElements() {
		if seen {
			out = append(out, c)
		}
		if c == e {
			seen = true
		}
	}
	return out
}

// insert dispatches on the type of value.
func (r *Renderer) insert(run *xml.Run, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case *Image:
		_, err := r.image(run, v)
		return err
	case Image:
		_, err := r.image(run, &v)
		return err
	case Markdown:
		markup, err := v.HTML()
		if err != nil {
			return NewEvaluationError("markdown", err)
		}
		return r.rich(run, markup)
	case string:
		if markupRegex.MatchString(v) {
			return r.rich(run, v)
		}
	}
	run.SetText(FormatValue(value))
	return nil
}

// checkStyle fails when id is not in the style catalog and strict checking
// is on.
func (r *Renderer) checkStyle(id, markup string) error {
	if !r.strict || r.styles == nil || r.styles.Has(id) {
		return nil
	}
	return NewParseError("unknown style "+id, markup, "")
}
