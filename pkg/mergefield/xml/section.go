package xml

import (
	"strconv"

	"github.com/beevik/etree"
)

// EMUPerTwip converts twentieths of a point to English Metric Units.
const EMUPerTwip = 635

// Letter size with one inch margins, used when a document has no sectPr.
const (
	defaultPageWidth = 12240
	defaultMargin    = 1440
)

// Section holds the page geometry of a w:sectPr, in twips.
type Section struct {
	PageWidth   int
	LeftMargin  int
	RightMargin int
}

// ContentWidth returns the usable width between the margins in EMU.
func (s Section) ContentWidth() int64 {
	w := s.PageWidth - s.LeftMargin - s.RightMargin
	if w <= 0 {
		w = defaultPageWidth - 2*defaultMargin
	}
	return int64(w) * EMUPerTwip
}

// Sections returns the sections of the document in order. The last one is
// the body-level w:sectPr.
func (d *Document) Sections() []Section {
	var out []Section
	for _, p := range d.Paragraphs() {
		if ppr := p.el.SelectElement("w:pPr"); ppr != nil {
			if sp := ppr.SelectElement("w:sectPr"); sp != nil {
				out = append(out, parseSection(sp))
			}
		}
	}
	if sp := d.Body().SelectElement("w:sectPr"); sp != nil {
		out = append(out, parseSection(sp))
	}
	return out
}

// LastSection returns the geometry that applies at the end of the document.
func (d *Document) LastSection() Section {
	sections := d.Sections()
	if len(sections) == 0 {
		return Section{PageWidth: defaultPageWidth, LeftMargin: defaultMargin, RightMargin: defaultMargin}
	}
	return sections[len(sections)-1]
}

func parseSection(sp *etree.Element) Section {
	s := Section{PageWidth: defaultPageWidth, LeftMargin: defaultMargin, RightMargin: defaultMargin}
	if sz := sp.SelectElement("w:pgSz"); sz != nil {
		s.PageWidth = twips(wAttr(sz, "w"), s.PageWidth)
	}
	if mar := sp.SelectElement("w:pgMar"); mar != nil {
		s.LeftMargin = twips(wAttr(mar, "left"), s.LeftMargin)
		s.RightMargin = twips(wAttr(mar, "right"), s.RightMargin)
	}
	return s
}

func twips(v string, dflt int) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return dflt
}
