package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Paragraph wraps a w:p element.
type Paragraph struct {
	el *etree.Element
}

// NewParagraph wraps an existing w:p element.
func NewParagraph(el *etree.Element) *Paragraph {
	return &Paragraph{el: el}
}

// ParagraphOf returns the paragraph enclosing e, or nil.
func ParagraphOf(e *etree.Element) *Paragraph {
	for cur := e; cur != nil; cur = cur.Parent() {
		if isW(cur, "p") {
			return &Paragraph{el: cur}
		}
	}
	return nil
}

func (p *Paragraph) Element() *etree.Element { return p.el }

// Runs returns the direct w:r children.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, c := range p.el.ChildElements() {
		if isW(c, "r") {
			out = append(out, &Run{el: c})
		}
	}
	return out
}

// Text returns the concatenated text of the paragraph's runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return b.String()
}

// Style returns the paragraph style ID, or "".
func (p *Paragraph) Style() string {
	if ppr := p.el.SelectElement("w:pPr"); ppr != nil {
		if s := ppr.SelectElement("w:pStyle"); s != nil {
			return wAttr(s, "val")
		}
	}
	return ""
}

// SetStyle sets the paragraph style ID. An empty id removes the style.
func (p *Paragraph) SetStyle(id string) {
	ppr := p.el.SelectElement("w:pPr")
	if id == "" {
		if ppr != nil {
			if s := ppr.SelectElement("w:pStyle"); s != nil {
				ppr.RemoveChild(s)
			}
		}
		return
	}
	if ppr == nil {
		ppr = etree.NewElement("w:pPr")
		p.el.InsertChildAt(0, ppr)
	}
	s := ppr.SelectElement("w:pStyle")
	if s == nil {
		s = etree.NewElement("w:pStyle")
		ppr.InsertChildAt(0, s)
	}
	s.CreateAttr("w:val", id)
}

// AddRun appends a run with the given text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{el: p.el.CreateElement("w:r")}
	if text != "" {
		r.SetText(text)
	}
	return r
}

// InsertParagraphAfter creates an empty paragraph directly after p.
func (p *Paragraph) InsertParagraphAfter(style string) *Paragraph {
	np := &Paragraph{el: etree.NewElement("w:p")}
	insertAfter(p.el, np.el)
	if style != "" {
		np.SetStyle(style)
	}
	return np
}

// InsertCaptionAfter adds a caption paragraph after p:
// "<label> <SEQ field>: <text>". number is the cached field result.
func (p *Paragraph) InsertCaptionAfter(text, sequence string, number int) *Paragraph {
	cp := p.InsertParagraphAfter("Caption")
	cp.AddRun(sequence + " ")
	fld := cp.el.CreateElement("w:fldSimple")
	fld.CreateAttr("w:instr", fmt.Sprintf(` SEQ %s \* ARABIC `, sequence))
	r := &Run{el: fld.CreateElement("w:r")}
	r.SetText(fmt.Sprintf("%d", number))
	cp.AddRun(": " + text)
	return cp
}

// TextFrames returns the text boxes anchored in this paragraph. The VML
// fallback copy of a DrawingML text box is skipped.
func (p *Paragraph) TextFrames() []*TextFrame {
	var out []*TextFrame
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			switch {
			case c.Space == "mc" && c.Tag == "Fallback":
			case isW(c, "txbxContent"):
				out = append(out, &TextFrame{el: c})
			default:
				walk(c)
			}
		}
	}
	walk(p.el)
	return out
}

// Remove detaches the paragraph. Returns false if it was already detached.
func (p *Paragraph) Remove() bool {
	if p.el.Parent() == nil {
		return false
	}
	Detach(p.el)
	return true
}

// InTableCell reports whether the paragraph is a direct child of w:tc.
func (p *Paragraph) InTableCell() bool {
	return isW(p.el.Parent(), "tc")
}

// markup that carries no visible content
var contentless = map[string]bool{
	"pPr": true, "proofErr": true, "bookmarkStart": true, "bookmarkEnd": true,
	"commentRangeStart": true, "commentRangeEnd": true, "permStart": true, "permEnd": true,
}

// IsEmpty reports whether nothing but properties and range markers remain.
func (p *Paragraph) IsEmpty() bool {
	for _, c := range p.el.ChildElements() {
		if c.Space != "w" || !contentless[c.Tag] {
			return false
		}
	}
	return true
}

// Removable reports whether deleting the paragraph keeps the document valid:
// it must not carry a section break or be the last block of a table cell.
func (p *Paragraph) Removable() bool {
	if ppr := p.el.SelectElement("w:pPr"); ppr != nil && ppr.SelectElement("w:sectPr") != nil {
		return false
	}
	if p.InTableCell() {
		return len(blocks(p.el.Parent())) > 1
	}
	return true
}

// Detached reports whether the paragraph has no parent.
func (p *Paragraph) Detached() bool {
	return p.el.Parent() == nil
}

// TextFrame wraps a w:txbxContent element.
type TextFrame struct {
	el *etree.Element
}

func (t *TextFrame) Element() *etree.Element { return t.el }

// Blocks returns the paragraphs and tables of the text frame.
func (t *TextFrame) Blocks() []Block {
	return blocks(t.el)
}
