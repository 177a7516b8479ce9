package mergefield

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xpath"
)

// ExtractFields returns every field of the document body in document order:
// paragraphs, table cells (row by row, cell by cell) and text frames, which
// are scanned right after the paragraph anchoring them.
func ExtractFields(doc *xml.Document) ([]*Field, error) {
	x := &extractor{doc: doc}
	if err := x.blocks(doc.Blocks()); err != nil {
		return nil, err
	}
	return x.fields, nil
}

type extractor struct {
	doc    *xml.Document
	fields []*Field
}

func (x *extractor) blocks(blocks []xml.Block) error {
	for _, b := range blocks {
		switch b := b.(type) {
		case *xml.Paragraph:
			if err := x.paragraph(b); err != nil {
				return err
			}
			for _, tf := range b.TextFrames() {
				if err := x.blocks(tf.Blocks()); err != nil {
					return err
				}
			}
		case *xml.Table:
			for _, row := range b.Rows() {
				for _, cell := range row.Cells() {
					if err := x.blocks(cell.Blocks()); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// openField is a complex field whose end marker has not been seen yet.
type openField struct {
	field *Field
	index int
	instr strings.Builder
}

func (x *extractor) paragraph(p *xml.Paragraph) error {
	var stack []*openField
	var dropped []int

	for _, child := range p.Element().ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "fldSimple":
			f := newField(x.doc, child)
			f.end = anchorAt(child)
			if r := child.FindElement(".//r"); r != nil {
				f.Default = xml.NewRun(r).Text()
			}
			if err := x.finish(f, child.SelectAttrValue("w:instr", ""), child); err != nil {
				return err
			}
			x.fields = append(x.fields, f)

		case "r":
			for _, c := range child.ChildElements() {
				if c.Space != "w" {
					continue
				}
				switch c.Tag {
				case "fldChar":
					switch c.SelectAttrValue("w:fldCharType", "") {
					case "begin":
						of := &openField{field: newField(x.doc, child), index: len(x.fields)}
						x.fields = append(x.fields, of.field)
						stack = append(stack, of)
					case "end":
						if len(stack) == 0 {
							continue
						}
						top := stack[len(stack)-1]
						stack = stack[:len(stack)-1]
						top.field.end = anchorAt(child)
						if err := x.finish(top.field, top.instr.String(), child); err != nil {
							return err
						}
					}
				case "instrText":
					if len(stack) > 0 {
						stack[len(stack)-1].instr.WriteString(c.Text())
					}
				case "t":
					if len(stack) > 0 {
						stack[len(stack)-1].field.Default = c.Text()
					}
				}
			}
		}
	}

	for _, of := range stack {
		Debug("dropping unterminated field %q at %s", strings.TrimSpace(of.instr.String()), of.field.StartPath())
		dropped = append(dropped, of.index)
	}
	for i := len(dropped) - 1; i >= 0; i-- {
		idx := dropped[i]
		x.fields = append(x.fields[:idx], x.fields[idx+1:]...)
	}
	return nil
}

func (x *extractor) finish(f *Field, instr string, node *etree.Element) error {
	if err := parseInstruction(f, instr); err != nil {
		return &ParseError{
			Message:  "malformed field instruction " + strings.TrimSpace(instr),
			Text:     f.Default,
			Location: xpath.Of(node),
			Cause:    err,
		}
	}
	return nil
}
