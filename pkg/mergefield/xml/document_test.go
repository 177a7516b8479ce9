package xml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"`

func parseBody(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := Parse([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document ` + wNS + `><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	return doc
}

func TestParseRejectsNonDocument(t *testing.T) {
	_, err := Parse([]byte(`<w:styles ` + wNS + `/>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<w:document ` + wNS + `/>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<w:document`))
	assert.Error(t, err)
}

func TestBlocksInBodyOrder(t *testing.T) {
	doc := parseBody(t, `
		<w:p><w:r><w:t>first</w:t></w:r></w:p>
		<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
		<w:sdt><w:sdtContent><w:p><w:r><w:t>control</w:t></w:r></w:p></w:sdtContent></w:sdt>
		<w:p><w:r><w:t>last</w:t></w:r></w:p>
		<w:sectPr/>`)

	blocks := doc.Blocks()
	require.Len(t, blocks, 4)
	assert.Equal(t, "first", blocks[0].(*Paragraph).Text())
	table, ok := blocks[1].(*Table)
	require.True(t, ok)
	cells := table.Rows()[0].Cells()
	require.Len(t, cells, 1)
	assert.Equal(t, "cell", cells[0].Blocks()[0].(*Paragraph).Text())
	assert.Equal(t, "control", blocks[2].(*Paragraph).Text())
	assert.Equal(t, "last", blocks[3].(*Paragraph).Text())

	assert.Len(t, doc.Paragraphs(), 3)
	assert.Len(t, doc.Tables(), 1)
}

func TestRunText(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>old</w:t></w:r></w:p>`)
	r := doc.Paragraphs()[0].Runs()[0]

	r.SetText("a\tb\nc")
	assert.Equal(t, "a\tb\nc", r.Text())
	assert.True(t, r.Bold(), "properties survive SetText")

	var tags []string
	for _, c := range r.Element().ChildElements() {
		tags = append(tags, c.FullTag())
	}
	assert.Equal(t, []string{"w:rPr", "w:t", "w:tab", "w:t", "w:br", "w:t"}, tags)

	r.Clear()
	assert.Equal(t, "", r.Text())
	assert.Len(t, r.Element().ChildElements(), 1)
}

func TestRunPropertiesSchemaOrder(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	r := doc.Paragraphs()[0].Runs()[0]

	r.SetColor("#ff0000")
	r.SetItalic(true)
	r.SetStyle("Strong")
	r.SetSmallCaps(true)
	r.SetBold(true)

	var tags []string
	for _, c := range r.Properties(false).ChildElements() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"rStyle", "b", "i", "smallCaps", "color"}, tags)
	assert.Equal(t, "ff0000", r.Color())
	assert.Equal(t, "Strong", r.Style())
	assert.True(t, r.Italic())
	assert.True(t, r.SmallCaps())

	r.SetBold(false)
	assert.False(t, r.Bold())
	r.SetColor("")
	assert.Equal(t, "", r.Color())
}

func TestToggleHonoursFalseValue(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:rPr><w:b w:val="0"/><w:i w:val="true"/></w:rPr></w:r></w:p>`)
	r := doc.Paragraphs()[0].Runs()[0]
	assert.False(t, r.Bold())
	assert.True(t, r.Italic())
}

func TestInsertParagraphAfter(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>one</w:t></w:r></w:p><w:p><w:r><w:t>two</w:t></w:r></w:p>`)
	first := doc.Paragraphs()[0]

	np := first.InsertParagraphAfter("Heading1")
	np.AddRun("inserted")

	paras := doc.Paragraphs()
	require.Len(t, paras, 3)
	assert.Equal(t, "inserted", paras[1].Text())
	assert.Equal(t, "Heading1", paras[1].Style())
	assert.Equal(t, "two", paras[2].Text())

	paras[1].SetStyle("")
	assert.Equal(t, "", paras[1].Style())
}

func TestInsertCaptionAfter(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>image</w:t></w:r></w:p>`)
	cp := doc.Paragraphs()[0].InsertCaptionAfter("A chart", "Figure", 3)

	assert.Equal(t, "Caption", cp.Style())
	assert.Equal(t, "Figure : A chart", cp.Text())
	fld := cp.Element().SelectElement("w:fldSimple")
	require.NotNil(t, fld)
	assert.Equal(t, ` SEQ Figure \* ARABIC `, fld.SelectAttrValue("w:instr", ""))
	assert.Equal(t, "3", NewRun(fld.SelectElement("w:r")).Text())
}

func TestRunInsertAfterAndRemove(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>a</w:t></w:r><w:r><w:t>c</w:t></w:r></w:p>`)
	p := doc.Paragraphs()[0]
	p.Runs()[0].InsertRunAfter("b")
	assert.Equal(t, "abc", p.Text())

	p.Runs()[1].Remove()
	assert.Equal(t, "ac", p.Text())
	assert.Same(t, p.Element(), p.Runs()[0].Paragraph().Element())
}

func TestTextFramesSkipFallback(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><mc:AlternateContent>
		<mc:Choice><w:drawing><w:txbxContent><w:p><w:r><w:t>box</w:t></w:r></w:p></w:txbxContent></w:drawing></mc:Choice>
		<mc:Fallback><w:pict><w:txbxContent><w:p><w:r><w:t>box</w:t></w:r></w:p></w:txbxContent></w:pict></mc:Fallback>
	</mc:AlternateContent></w:r></w:p>`)

	frames := doc.Paragraphs()[0].TextFrames()
	require.Len(t, frames, 1)
	blocks := frames[0].Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, "box", blocks[0].(*Paragraph).Text())
}

func TestTextFramesInDocumentOrder(t *testing.T) {
	doc := parseBody(t, `<w:p>
		<w:r><w:drawing><wp:anchor><a:graphic><a:graphicData><wps:wsp><wps:txbx>
			<w:txbxContent><w:p><w:r><w:t>first</w:t></w:r></w:p></w:txbxContent>
		</wps:txbx></wps:wsp></a:graphicData></a:graphic></wp:anchor></w:drawing></w:r>
		<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>second</w:t></w:r></w:p></w:txbxContent></w:pict></w:r>
	</w:p>`)

	var texts []string
	for _, f := range doc.Paragraphs()[0].TextFrames() {
		texts = append(texts, f.Blocks()[0].(*Paragraph).Text())
	}
	assert.Equal(t, []string{"first", "second"}, texts)
}

func TestSections(t *testing.T) {
	doc := parseBody(t, `
		<w:p><w:pPr><w:sectPr><w:pgSz w:w="16838"/><w:pgMar w:left="720" w:right="720"/></w:sectPr></w:pPr></w:p>
		<w:sectPr><w:pgSz w:w="11906"/><w:pgMar w:left="1417" w:right="1417"/></w:sectPr>`)

	sections := doc.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, 16838, sections[0].PageWidth)
	last := doc.LastSection()
	assert.Equal(t, Section{PageWidth: 11906, LeftMargin: 1417, RightMargin: 1417}, last)
	assert.Equal(t, int64(11906-2*1417)*EMUPerTwip, last.ContentWidth())

	empty := parseBody(t, `<w:p/>`)
	assert.Equal(t, int64(9360)*EMUPerTwip, empty.LastSection().ContentWidth())
}

func TestParseStyles(t *testing.T) {
	styles, err := ParseStyles([]byte(`<w:styles ` + wNS + `>
		<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
		<w:style w:type="paragraph" w:styleId="Caption"><w:name w:val="caption"/></w:style>
		<w:style w:type="character" w:styleId="Code"/>
	</w:styles>`))
	require.NoError(t, err)

	assert.True(t, styles.Has("Heading1"))
	assert.False(t, styles.Has("Heading9"))
	assert.Equal(t, "heading 1", styles.Name("Heading1"))
	assert.Equal(t, "Code", styles.Name("Code"))
	assert.Equal(t, []string{"Caption", "Code", "Heading1"}, styles.IDs())
}

func TestAddPicture(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r/></w:p>`)
	id := doc.NextDrawingID()
	r := doc.Paragraphs()[0].Runs()[0]
	r.AddPicture(Picture{RelID: "rId9", Name: "image1.png", ID: id, Width: 100, Height: 50})

	ext := r.Element().FindElement(".//wp:extent")
	require.NotNil(t, ext)
	assert.Equal(t, "100", ext.SelectAttrValue("cx", ""))
	assert.Equal(t, "50", ext.SelectAttrValue("cy", ""))
	blip := r.Element().FindElement(".//a:blip")
	require.NotNil(t, blip)
	assert.Equal(t, "rId9", blip.SelectAttrValue("r:embed", ""))
	assert.Equal(t, 2, doc.NextDrawingID())
}

func TestEnsureNamespace(t *testing.T) {
	doc := parseBody(t, `<w:p/>`)
	doc.EnsureNamespace("wp", NamespaceWP)
	doc.EnsureNamespace("wp", "urn:other")
	assert.Equal(t, NamespaceWP, doc.Root().SelectAttrValue("xmlns:wp", ""))

	out, err := doc.Bytes()
	require.NoError(t, err)
	reparsed := etree.NewDocument()
	require.NoError(t, reparsed.ReadFromBytes(out))
	assert.NotNil(t, reparsed.Root().SelectElement("w:body"))
}

func TestParagraphIsEmptyAndRemovable(t *testing.T) {
	doc := parseBody(t, `
		<w:p><w:pPr><w:pStyle w:val="x"/></w:pPr><w:bookmarkStart w:id="1"/><w:proofErr/></w:p>
		<w:p><w:hyperlink/></w:p>
		<w:p><w:pPr><w:sectPr/></w:pPr></w:p>
		<w:tbl><w:tr><w:tc><w:p/></w:tc><w:tc><w:p/><w:p/></w:tc></w:tr></w:tbl>`)

	paras := doc.Paragraphs()
	assert.True(t, paras[0].IsEmpty())
	assert.True(t, paras[0].Removable())
	assert.False(t, paras[1].IsEmpty())
	assert.False(t, paras[2].Removable())

	cells := doc.Tables()[0].Rows()[0].Cells()
	only := cells[0].Blocks()[0].(*Paragraph)
	assert.True(t, only.InTableCell())
	assert.False(t, only.Removable())
	assert.True(t, cells[1].Blocks()[0].(*Paragraph).Removable())

	assert.True(t, paras[0].Remove())
	assert.True(t, paras[0].Detached())
	assert.False(t, paras[0].Remove())
}
