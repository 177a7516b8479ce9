package mergefield

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var errClosed = errors.New("template is closed")

// PreparedTemplate is a validated DOCX template ready for rendering. It is
// safe for concurrent use: every Render works on its own copy of the
// document.
type PreparedTemplate struct {
	source     []byte
	fields     []*Field
	renderOpts []RenderOption
	closed     bool
	mu         sync.Mutex
}

// prepare parses the template once to report malformed markers up front.
func prepare(source []byte, keyword string, opts []RenderOption) (*PreparedTemplate, error) {
	pkg, err := OpenPackage(source)
	if err != nil {
		return nil, err
	}
	fields, err := ExtractFields(pkg.Document)
	if err != nil {
		return nil, err
	}
	if _, err := BuildTree(fields, keyword); err != nil {
		return nil, err
	}
	return &PreparedTemplate{source: source, fields: fields, renderOpts: opts}, nil
}

// Render evaluates the template against data and returns the resulting
// DOCX file.
//
// Example:
//
//	out, err := tmpl.Render(mergefield.Data{
//	    "customer": map[string]interface{}{"name": "Jane Roe"},
//	    "items":    []string{"Widget", "Gadget"},
//	})
func (pt *PreparedTemplate) Render(data Data, opts ...RenderOption) (io.Reader, error) {
	pt.mu.Lock()
	closed := pt.closed
	pt.mu.Unlock()
	if closed {
		return nil, errClosed
	}

	pkg, err := OpenPackage(pt.source)
	if err != nil {
		return nil, err
	}
	all := append(append([]RenderOption(nil), pt.renderOpts...), opts...)
	if err := Evaluate(pkg.Document, NewContext(data), all...); err != nil {
		return nil, err
	}
	out, err := pkg.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}

// Fields returns the fields found in the template, in document order.
func (pt *PreparedTemplate) Fields() ([]*Field, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.closed {
		return nil, errClosed
	}
	return append([]*Field(nil), pt.fields...), nil
}

// Close releases the template. Further calls to Render fail.
func (pt *PreparedTemplate) Close() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.closed = true
	pt.source = nil
	pt.fields = nil
	return nil
}
