package mergefield

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
)

// Markdown is a value converted to HTML and rendered as rich text. Strong
// and emphasis become bold and italic; other constructs keep their text.
type Markdown string

var (
	markdown         = goldmark.New()
	strongTagRegex   = regexp.MustCompile(`<(/?)strong>`)
	emphasisTagRegex = regexp.MustCompile(`<(/?)em>`)
)

// HTML converts the markdown source to markup for the rich-text renderer.
func (m Markdown) HTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(m), &buf); err != nil {
		return "", err
	}
	out := strongTagRegex.ReplaceAllString(buf.String(), "<${1}b>")
	out = emphasisTagRegex.ReplaceAllString(out, "<${1}i>")
	return out, nil
}
