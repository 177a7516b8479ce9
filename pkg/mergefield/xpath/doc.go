// Package xpath addresses elements of an etree document by position.
//
// A path is a sequence of steps of the form prefix:tag[n] where n is the
// 1-based position of the element among all element children of its parent.
// Absolute paths start at the document node:
//
//	/w:document[1]/w:body[1]/w:p[3]/w:r[2]
//
// Relative paths are expressed against a base path and survive the base moving
// to a different sibling position:
//
//	./                     the base itself
//	./w:r[2]               a descendant of the base
//	..                     the parent of the base
//	../w:p[+2]/w:r[1]      two siblings after the base, then its second child
//
// Relative and Absolute are exact inverses: Absolute(Relative(p, b), b) == p.
package xpath
