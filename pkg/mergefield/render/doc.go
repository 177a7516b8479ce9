// Package render provides pure helpers for turning user-supplied rich text
// into something the mergefield renderer can walk.
//
// # Structure Organization
//
//   - sanitize.go: allow-list cleaning of HTML markup (Sanitize)
//   - style.go: inline CSS declarations (ParseStyle, CleanStyle)
//   - fragment.go: parsing cleaned markup into a node tree (ParseFragment)
//
// # Allow-lists
//
// Tags: p, span, br, img, i, b, h1, h2, h3, h4.
// Attributes: class and style on every tag, alt and src on img.
// Style properties: color, font-weight, font-style, font-variant.
//
// A rejected tag is removed but the text inside it is kept, so
//
//	Sanitize(`test <iframe>a</iframe>`) == "test a"
//
// A rejected attribute or style property is dropped and the element survives:
//
//	Sanitize(`<span style="color: #ff0000; background: foo">x</span>`)
//	// <span style="color: #ff0000">x</span>
//
// # Design Principles
//
// Functions in this package hold no state and never import the mergefield
// package or the document model.
package render
