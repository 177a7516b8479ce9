package xml

import "github.com/beevik/etree"

// Table wraps a w:tbl element.
type Table struct {
	el *etree.Element
}

func (t *Table) Element() *etree.Element { return t.el }

// Rows returns the table rows.
func (t *Table) Rows() []*Row {
	var out []*Row
	for _, c := range t.el.SelectElements("w:tr") {
		out = append(out, &Row{el: c})
	}
	return out
}

// Row wraps a w:tr element.
type Row struct {
	el *etree.Element
}

// Cells returns the row's cells, including cells of row-level content controls.
func (r *Row) Cells() []*Cell {
	var out []*Cell
	for _, c := range r.el.ChildElements() {
		switch {
		case isW(c, "tc"):
			out = append(out, &Cell{el: c})
		case isW(c, "sdt"):
			if content := c.SelectElement("w:sdtContent"); content != nil {
				for _, tc := range content.SelectElements("w:tc") {
					out = append(out, &Cell{el: tc})
				}
			}
		}
	}
	return out
}

// Cell wraps a w:tc element.
type Cell struct {
	el *etree.Element
}

// Blocks returns the paragraphs and nested tables of the cell.
func (c *Cell) Blocks() []Block {
	return blocks(c.el)
}
