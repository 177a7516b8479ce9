package mergefield

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
)

const (
	documentPart      = "word/document.xml"
	documentRelsPart  = "word/_rels/document.xml.rels"
	stylesPart        = "word/styles.xml"
	contentTypesPart  = "[Content_Types].xml"
	relationshipsNS   = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNS    = "http://schemas.openxmlformats.org/package/2006/content-types"
	imageRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

// Package is an opened DOCX file: its main document, style catalog and the
// raw parts carried through unchanged. Package implements xml.MediaStore.
type Package struct {
	Document *xml.Document

	names        []string
	parts        map[string][]byte
	rels         *etree.Document
	contentTypes *etree.Document
	mediaCount   int
}

// OpenPackage parses DOCX bytes.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewDocumentError("read", "DOCX", fmt.Errorf("failed to read zip file: %w", err))
	}

	pkg := &Package{parts: make(map[string][]byte)}
	for _, file := range zr.File {
		content, err := readZipFile(file)
		if err != nil {
			return nil, NewDocumentError("read", file.Name, err)
		}
		pkg.names = append(pkg.names, file.Name)
		pkg.parts[file.Name] = content
		if strings.HasPrefix(file.Name, "word/media/") {
			pkg.mediaCount++
		}
	}

	docXML, ok := pkg.parts[documentPart]
	if !ok {
		return nil, NewDocumentError("read", "DOCX", fmt.Errorf("not a valid DOCX file: missing %s", documentPart))
	}
	doc, err := xml.Parse(docXML)
	if err != nil {
		return nil, NewDocumentError("parse", documentPart, err)
	}
	pkg.Document = doc
	doc.Media = pkg

	if data, ok := pkg.parts[stylesPart]; ok {
		styles, err := xml.ParseStyles(data)
		if err != nil {
			return nil, NewDocumentError("parse", stylesPart, err)
		}
		doc.Styles = styles
	}
	return pkg, nil
}

// OpenPackageFile reads and parses a DOCX file.
func OpenPackageFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	return OpenPackage(data)
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return content, nil
}

// Part returns the raw content of a part.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// Parts lists the part names in archive order.
func (p *Package) Parts() []string {
	return append([]string(nil), p.names...)
}

// AddImage stores data as a new media part related to the main document.
func (p *Package) AddImage(data []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	rels, err := p.relationships()
	if err != nil {
		return "", err
	}
	types, err := p.types()
	if err != nil {
		return "", err
	}

	p.mediaCount++
	name := fmt.Sprintf("media/image%d.%s", p.mediaCount, ext)
	for p.parts["word/"+name] != nil {
		p.mediaCount++
		name = fmt.Sprintf("media/image%d.%s", p.mediaCount, ext)
	}
	p.setPart("word/"+name, data)

	id := nextRelationshipID(rels.Root())
	rel := rels.Root().CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", imageRelationship)
	rel.CreateAttr("Target", name)

	registered := false
	for _, d := range types.Root().SelectElements("Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			registered = true
			break
		}
	}
	if !registered {
		d := etree.NewElement("Default")
		d.CreateAttr("Extension", ext)
		d.CreateAttr("ContentType", contentType)
		types.Root().InsertChildAt(0, d)
	}
	return id, nil
}

func (p *Package) relationships() (*etree.Document, error) {
	if p.rels != nil {
		return p.rels, nil
	}
	p.rels = etree.NewDocument()
	if data, ok := p.parts[documentRelsPart]; ok {
		if err := p.rels.ReadFromBytes(data); err != nil {
			return nil, NewDocumentError("parse", documentRelsPart, err)
		}
	} else {
		p.rels.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		p.rels.CreateElement("Relationships").CreateAttr("xmlns", relationshipsNS)
	}
	return p.rels, nil
}

func (p *Package) types() (*etree.Document, error) {
	if p.contentTypes != nil {
		return p.contentTypes, nil
	}
	p.contentTypes = etree.NewDocument()
	if data, ok := p.parts[contentTypesPart]; ok {
		if err := p.contentTypes.ReadFromBytes(data); err != nil {
			return nil, NewDocumentError("parse", contentTypesPart, err)
		}
	} else {
		p.contentTypes.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		p.contentTypes.CreateElement("Types").CreateAttr("xmlns", contentTypesNS)
	}
	return p.contentTypes, nil
}

// nextRelationshipID returns rId<n> above every numeric rId in use.
func nextRelationshipID(root *etree.Element) string {
	maxID := 0
	for _, rel := range root.SelectElements("Relationship") {
		id := rel.SelectAttrValue("Id", "")
		if strings.HasPrefix(id, "rId") {
			if n, err := strconv.Atoi(id[3:]); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

func (p *Package) setPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// WriteTo serializes the package with the current state of the document.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	docXML, err := p.Document.Bytes()
	if err != nil {
		return 0, NewDocumentError("write", documentPart, err)
	}
	p.setPart(documentPart, docXML)
	if p.rels != nil {
		data, err := p.rels.WriteToBytes()
		if err != nil {
			return 0, NewDocumentError("write", documentRelsPart, err)
		}
		p.setPart(documentRelsPart, data)
	}
	if p.contentTypes != nil {
		data, err := p.contentTypes.WriteToBytes()
		if err != nil {
			return 0, NewDocumentError("write", contentTypesPart, err)
		}
		p.setPart(contentTypesPart, data)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		fw, err := zw.Create(name)
		if err != nil {
			return 0, NewDocumentError("write", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return 0, NewDocumentError("write", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, NewDocumentError("write", "DOCX", fmt.Errorf("failed to close zip writer: %w", err))
	}
	return buf.WriteTo(w)
}

// Bytes serializes the package.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
