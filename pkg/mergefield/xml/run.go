package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// rPrOrder is the schema order of w:rPr children.
var rPrOrder = []string{
	"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike",
	"dstrike", "outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid",
	"vanish", "webHidden", "color", "spacing", "w", "kern", "position", "sz",
	"szCs", "highlight", "u", "effect", "bdr", "shd", "fitText", "vertAlign",
	"rtl", "cs", "em", "lang", "eastAsianLayout", "specVanish", "oMath",
}

func rank(tag string) int {
	for i, t := range rPrOrder {
		if t == tag {
			return i
		}
	}
	return len(rPrOrder)
}

// Run wraps a w:r element.
type Run struct {
	el *etree.Element
}

// NewRun wraps an existing w:r element.
func NewRun(el *etree.Element) *Run {
	return &Run{el: el}
}

func (r *Run) Element() *etree.Element { return r.el }

// Paragraph returns the enclosing paragraph, or nil once detached.
func (r *Run) Paragraph() *Paragraph {
	return ParagraphOf(r.el.Parent())
}

// Text returns the run text. Tabs and breaks map to \t and \n.
func (r *Run) Text() string {
	var b strings.Builder
	for _, c := range r.el.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case "t":
			b.WriteString(c.Text())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// SetText replaces the run content, keeping its properties.
func (r *Run) SetText(text string) {
	r.Clear()
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := r.el.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(buf.String())
		buf.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			r.el.CreateElement("w:br")
		case '\t':
			flush()
			r.el.CreateElement("w:tab")
		case '\r':
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
}

// Clear removes everything but the run properties.
func (r *Run) Clear() {
	for _, c := range r.el.ChildElements() {
		if !isW(c, "rPr") {
			r.el.RemoveChild(c)
		}
	}
}

// AddBreak appends a line break.
func (r *Run) AddBreak() {
	r.el.CreateElement("w:br")
}

// InsertRunAfter creates a run directly after r.
func (r *Run) InsertRunAfter(text string) *Run {
	nr := &Run{el: etree.NewElement("w:r")}
	insertAfter(r.el, nr.el)
	if text != "" {
		nr.SetText(text)
	}
	return nr
}

// Remove detaches the run.
func (r *Run) Remove() {
	Detach(r.el)
}

// Properties returns w:rPr, creating it when create is set.
func (r *Run) Properties(create bool) *etree.Element {
	rpr := r.el.SelectElement("w:rPr")
	if rpr == nil && create {
		rpr = etree.NewElement("w:rPr")
		r.el.InsertChildAt(0, rpr)
	}
	return rpr
}

func (r *Run) prop(tag string) *etree.Element {
	rpr := r.Properties(false)
	if rpr == nil {
		return nil
	}
	return rpr.SelectElement("w:" + tag)
}

// setProp returns the property element, inserting it in schema order.
func (r *Run) setProp(tag string) *etree.Element {
	rpr := r.Properties(true)
	if e := rpr.SelectElement("w:" + tag); e != nil {
		return e
	}
	e := etree.NewElement("w:" + tag)
	want := rank(tag)
	for _, c := range rpr.ChildElements() {
		if rank(c.Tag) > want {
			rpr.InsertChildAt(c.Index(), e)
			return e
		}
	}
	rpr.AddChild(e)
	return e
}

func (r *Run) clearProp(tag string) {
	if e := r.prop(tag); e != nil {
		e.Parent().RemoveChild(e)
	}
}

func (r *Run) toggle(tag string) bool {
	e := r.prop(tag)
	return e != nil && !isFalse(wAttr(e, "val"))
}

func (r *Run) setToggle(tag string, on bool) {
	if !on {
		r.clearProp(tag)
		return
	}
	e := r.setProp(tag)
	e.RemoveAttr("w:val")
}

func (r *Run) Bold() bool           { return r.toggle("b") }
func (r *Run) SetBold(on bool)      { r.setToggle("b", on) }
func (r *Run) Italic() bool         { return r.toggle("i") }
func (r *Run) SetItalic(on bool)    { r.setToggle("i", on) }
func (r *Run) SmallCaps() bool      { return r.toggle("smallCaps") }
func (r *Run) SetSmallCaps(on bool) { r.setToggle("smallCaps", on) }

// Color returns the w:color value, or "".
func (r *Run) Color() string {
	if e := r.prop("color"); e != nil {
		return wAttr(e, "val")
	}
	return ""
}

// SetColor sets the hex color without a leading '#'. "" removes it.
func (r *Run) SetColor(hex string) {
	if hex == "" {
		r.clearProp("color")
		return
	}
	r.setProp("color").CreateAttr("w:val", strings.TrimPrefix(hex, "#"))
}

// Style returns the character style ID, or "".
func (r *Run) Style() string {
	if e := r.prop("rStyle"); e != nil {
		return wAttr(e, "val")
	}
	return ""
}

// SetStyle sets the character style ID.
func (r *Run) SetStyle(id string) {
	if id == "" {
		r.clearProp("rStyle")
		return
	}
	r.setProp("rStyle").CreateAttr("w:val", id)
}
