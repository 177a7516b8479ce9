package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Namespace URIs used when building new markup.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// MediaStore stores binary parts referenced from the document.
type MediaStore interface {
	// AddImage stores data under a new part and returns its relationship ID.
	AddImage(data []byte, ext string) (string, error)
}

// Document is the parsed main document part.
type Document struct {
	Tree   *etree.Document
	Styles *Styles
	Media  MediaStore

	drawingID int
}

// Block is a body-level element: a *Paragraph or a *Table.
type Block interface {
	Element() *etree.Element
}

// Parse parses the content of word/document.xml.
func Parse(data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse document XML: %w", err)
	}
	return NewDocument(tree)
}

// NewDocument wraps an already parsed tree.
func NewDocument(tree *etree.Document) (*Document, error) {
	root := tree.Root()
	if root == nil || root.Tag != "document" {
		return nil, fmt.Errorf("root element is not w:document")
	}
	if body(root) == nil {
		return nil, fmt.Errorf("document has no w:body")
	}
	d := &Document{Tree: tree}
	for _, e := range root.FindElements(".//docPr") {
		var id int
		fmt.Sscanf(e.SelectAttrValue("id", "0"), "%d", &id)
		if id > d.drawingID {
			d.drawingID = id
		}
	}
	return d, nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.Tree.WriteToBytes()
}

// Root returns the w:document element.
func (d *Document) Root() *etree.Element {
	return d.Tree.Root()
}

// Body returns the w:body element.
func (d *Document) Body() *etree.Element {
	return body(d.Tree.Root())
}

// Blocks returns the body-level paragraphs and tables in document order.
func (d *Document) Blocks() []Block {
	return blocks(d.Body())
}

// Paragraphs returns the body-level paragraphs.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.Blocks() {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the body-level tables.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks() {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// NextDrawingID returns a fresh wp:docPr id.
func (d *Document) NextDrawingID() int {
	d.drawingID++
	return d.drawingID
}

// EnsureNamespace declares prefix on the root element if it is missing.
func (d *Document) EnsureNamespace(prefix, uri string) {
	root := d.Root()
	if root.SelectAttr("xmlns:"+prefix) == nil {
		root.CreateAttr("xmlns:"+prefix, uri)
	}
}

func body(root *etree.Element) *etree.Element {
	if root == nil {
		return nil
	}
	return root.SelectElement("w:body")
}

// blocks collects the paragraph and table children of parent, descending into
// block-level content controls.
func blocks(parent *etree.Element) []Block {
	if parent == nil {
		return nil
	}
	var out []Block
	for _, c := range parent.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case "p":
			out = append(out, &Paragraph{el: c})
		case "tbl":
			out = append(out, &Table{el: c})
		case "sdt":
			out = append(out, blocks(c.SelectElement("w:sdtContent"))...)
		}
	}
	return out
}

func isW(e *etree.Element, tag string) bool {
	return e != nil && e.Space == "w" && e.Tag == tag
}

// insertAfter places e directly after ref in ref's parent.
func insertAfter(ref, e *etree.Element) {
	parent := ref.Parent()
	parent.InsertChildAt(ref.Index()+1, e)
}

// InsertBefore places e directly before ref in ref's parent.
func InsertBefore(ref, e *etree.Element) {
	ref.Parent().InsertChildAt(ref.Index(), e)
}

// Detach removes e from its parent, if any.
func Detach(e *etree.Element) {
	if parent := e.Parent(); parent != nil {
		parent.RemoveChild(e)
	}
}

func wAttr(e *etree.Element, key string) string {
	if v := e.SelectAttrValue("w:"+key, ""); v != "" {
		return v
	}
	return e.SelectAttrValue(key, "")
}

func isFalse(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "off":
		return true
	}
	return false
}
