// Package xml provides a mutable object model for the main part of a DOCX
// package (word/document.xml).
//
// The model is a thin typed view over an etree element tree: a Paragraph or
// Run wraps the live *etree.Element, so edits made through the view are edits
// to the tree and survive serialization. Elements keep the prefixes used in
// the source document; every lookup goes through the w: prefix.
//
// Structure:
//
//	Document
//	└── Blocks (body order, w:sdt content flattened)
//	    ├── Paragraph
//	    │   ├── Run
//	    │   └── TextFrame (w:txbxContent) ── Blocks
//	    └── Table
//	        └── Row ── Cell ── Blocks
package xml
