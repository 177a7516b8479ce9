package xml

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
)

// Styles is the style catalog of word/styles.xml, keyed by style ID.
type Styles struct {
	names map[string]string
}

// ParseStyles reads a styles part.
func ParseStyles(data []byte) (*Styles, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse styles.xml: %w", err)
	}
	s := &Styles{names: make(map[string]string)}
	root := tree.Root()
	if root == nil {
		return s, nil
	}
	for _, st := range root.SelectElements("w:style") {
		id := wAttr(st, "styleId")
		if id == "" {
			continue
		}
		name := id
		if n := st.SelectElement("w:name"); n != nil {
			name = wAttr(n, "val")
		}
		s.names[id] = name
	}
	return s, nil
}

// NewStyles builds a catalog from style IDs to names.
func NewStyles(names map[string]string) *Styles {
	s := &Styles{names: make(map[string]string, len(names))}
	for id, n := range names {
		s.names[id] = n
	}
	return s
}

// Has reports whether id is defined.
func (s *Styles) Has(id string) bool {
	_, ok := s.names[id]
	return ok
}

// Name returns the display name of id.
func (s *Styles) Name(id string) string {
	return s.names[id]
}

// IDs returns the defined style IDs, sorted.
func (s *Styles) IDs() []string {
	out := make([]string, 0, len(s.names))
	for id := range s.names {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
