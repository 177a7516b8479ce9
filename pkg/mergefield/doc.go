// Package mergefield fills Microsoft Word (DOCX) templates whose
// placeholders are ordinary Word merge fields.
//
// A template is a normal document containing MERGEFIELD fields (inserted
// with Insert > Quick Parts > Field, or typed with Ctrl+F9). The first word
// of the field instruction after the keyword selects a command.
//
// # Quick Start
//
//	tmpl, err := mergefield.PrepareFile("letter.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	out, err := tmpl.Render(mergefield.Data{
//	    "customer": map[string]interface{}{"name": "Jane Roe"},
//	    "items":    []string{"Widget", "Gadget"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Field Syntax
//
//	MERGEFIELD $customer.name                 - substitution
//	MERGEFIELD #if($total > 100 and $vip)     - conditional, closed by #end
//	MERGEFIELD #foreach($item in $items)      - loop, closed by #end
//	MERGEFIELD #end
//
// Inside a loop the current element is bound to the loop variable and
// $foreach.index, $foreach.isFirst, $foreach.isLast and $foreach.hasNext
// describe the iteration. Lookups that miss render as empty text.
//
// Conditions support ==, !=, <, <=, >, >=, && (and), || (or), ! (not),
// parentheses, numbers, quoted strings, true, false and null.
//
// # Values
//
// Strings containing markup are rendered as rich text restricted to p, span,
// br, img, b, i and h1-h4 with the class and style attributes; img sources
// are resolved by the providers given with WithImageProviders. Markdown
// values are converted to the same subset. *Image values are embedded as
// pictures spanning the content width, optionally with a numbered caption.
// Everything else is formatted as text.
//
// # Architecture
//
//   - xpath: location paths for element trees and the relative/absolute path algebra
//   - xml: the DOCX object model (paragraphs, runs, tables, sections, styles)
//   - render: markup sanitizing and inline style parsing
//
// The main package extracts fields, nests them into an evaluation tree and
// evaluates it against a Context.
package mergefield
