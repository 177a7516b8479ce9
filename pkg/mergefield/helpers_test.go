package mergefield

import (
	"fmt"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"`

// parseBody builds a document from body markup.
func parseBody(t *testing.T, body ...string) *xml.Document {
	t.Helper()
	doc, err := xml.Parse([]byte(documentXML(strings.Join(body, ""))))
	require.NoError(t, err)
	return doc
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + testNamespaces + `><w:body>` + body + `</w:body></w:document>`
}

// field returns the runs of a complex MERGEFIELD showing text.
func field(instr, text string) string {
	return `<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> MERGEFIELD ` + escape(instr) + ` </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>` + escape(text) + `</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>`
}

// simpleField returns a w:fldSimple MERGEFIELD showing text.
func simpleField(instr, text string) string {
	return fmt.Sprintf(`<w:fldSimple w:instr=" MERGEFIELD %s "><w:r><w:t>%s</w:t></w:r></w:fldSimple>`, escape(instr), escape(text))
}

// para wraps inner markup in a paragraph.
func para(inner ...string) string {
	return `<w:p>` + strings.Join(inner, "") + `</w:p>`
}

func text(s string) string {
	return `<w:r><w:t xml:space="preserve">` + escape(s) + `</w:t></w:r>`
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// descendants returns the elements below root with the given local name,
// in document order.
func descendants(root *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// paragraphTexts returns the text of every body paragraph, tables included.
func paragraphTexts(doc *xml.Document) []string {
	var out []string
	for _, p := range descendants(doc.Body(), "p") {
		if p.Space != "w" {
			continue
		}
		out = append(out, xml.NewParagraph(p).Text())
	}
	return out
}

// bodyText concatenates all w:t text of the body.
func bodyText(doc *xml.Document) string {
	var b strings.Builder
	for _, t := range descendants(doc.Body(), "t") {
		b.WriteString(t.Text())
	}
	return b.String()
}

func countFieldMarkup(doc *xml.Document) int {
	n := 0
	for _, tag := range []string{"fldChar", "instrText", "fldSimple"} {
		n += len(descendants(doc.Body(), tag))
	}
	return n
}

func elementsByTag(root *etree.Element, tag string) []*etree.Element {
	return descendants(root, tag)
}

// quietLogger discards evaluation warnings in tests.
func quietLogger() RenderOption {
	return WithLogger(NewLogger(nil, LogOff))
}
