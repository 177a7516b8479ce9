package mergefield

import (
	"regexp"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/render"
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	headingStyles   = map[string]string{"h1": "Heading1", "h2": "Heading2", "h3": "Heading3", "h4": "Heading4"}
)

// runFormat is the character formatting inherited by nested tags.
type runFormat struct {
	bold      bool
	italic    bool
	smallCaps bool
	color     string
	style     string
}

// richWriter emits runs and paragraphs for a parsed fragment. The field's own
// run receives the first text; later text goes into runs inserted after it.
type richWriter struct {
	r      *Renderer
	markup string
	para   *xml.Paragraph
	run    *xml.Run
	used   bool
	blocks int
}

func (r *Renderer) rich(run *xml.Run, markup string) error {
	root, err := render.ParseFragment(render.Sanitize(markup))
	if err != nil {
		return &ParseError{Message: "invalid rich text", Text: markup, Cause: err}
	}
	w := &richWriter{r: r, markup: markup, para: run.Paragraph(), run: run}
	return w.children(root, runFormat{})
}

func (w *richWriter) children(n *nethtml.Node, f runFormat) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.node(c, f); err != nil {
			return err
		}
	}
	return nil
}

func (w *richWriter) node(n *nethtml.Node, f runFormat) error {
	switch n.Type {
	case nethtml.TextNode:
		w.text(n.Data, f)
		return nil
	case nethtml.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "p", "h1", "h2", "h3", "h4":
		style := headingStyles[n.Data]
		if class := render.Attr(n, "class"); class != "" && style == "" {
			style = class
		}
		if style != "" {
			if err := w.r.checkStyle(style, w.markup); err != nil {
				return err
			}
		}
		w.paragraph(style)
		return w.children(n, w.format(n, f))

	case "br":
		w.next(f).AddBreak()
		return nil

	case "img":
		return w.image(n)

	case "b":
		f.bold = true
	case "i":
		f.italic = true
	}

	if class := render.Attr(n, "class"); class != "" {
		if err := w.r.checkStyle(class, w.markup); err != nil {
			return err
		}
		f.style = class
	}
	return w.children(n, w.format(n, f))
}

// format applies the inline style declarations of n on top of f.
func (w *richWriter) format(n *nethtml.Node, f runFormat) runFormat {
	for _, d := range render.ParseStyle(render.Attr(n, "style")) {
		value := strings.ToLower(d.Value)
		switch d.Name {
		case "color":
			if strings.HasPrefix(value, "#") {
				f.color = strings.TrimPrefix(value, "#")
			}
		case "font-weight":
			f.bold = isBoldWeight(value)
		case "font-style":
			f.italic = value == "italic" || value == "oblique"
		case "font-variant":
			f.smallCaps = value == "small-caps"
		}
	}
	return f
}

func isBoldWeight(v string) bool {
	switch v {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 600
}

// paragraph starts a new block. The first block reuses the field's
// paragraph.
func (w *richWriter) paragraph(style string) {
	if w.blocks > 0 || w.used || w.run == nil {
		w.para = w.para.InsertParagraphAfter("")
		w.run = w.para.AddRun("")
		w.used = false
	}
	if style != "" {
		w.para.SetStyle(style)
	}
	w.blocks++
}

// next returns the run to write to, formatted as f.
func (w *richWriter) next(f runFormat) *xml.Run {
	switch {
	case w.run == nil:
		w.paragraph("")
	case w.used:
		w.run = w.run.InsertRunAfter("")
	}
	w.used = true
	run := w.run
	if f.bold {
		run.SetBold(true)
	}
	if f.italic {
		run.SetItalic(true)
	}
	if f.smallCaps {
		run.SetSmallCaps(true)
	}
	if f.color != "" {
		run.SetColor(f.color)
	}
	if f.style != "" {
		run.SetStyle(f.style)
	}
	return run
}

func (w *richWriter) text(s string, f runFormat) {
	if strings.TrimSpace(s) == "" && strings.ContainsAny(s, "\n\r") {
		return
	}
	s = whitespaceRegex.ReplaceAllString(s, " ")
	w.next(f).SetText(s)
}

// image places the provider's picture in a paragraph of its own. Text after
// it continues in a fresh paragraph.
func (w *richWriter) image(n *nethtml.Node) error {
	src := render.Attr(n, "src")
	p := w.para.InsertParagraphAfter("")
	w.para, w.run, w.used = p, nil, false
	w.blocks++

	img := w.r.lookupImage(src)
	if img == nil {
		w.r.logger.WithField("src", truncate(src, 64)).Warn("no image provider handled source")
		return nil
	}
	if img.Name == "" {
		img.Name = render.Attr(n, "alt")
	}
	last, err := w.r.image(p.AddRun(""), img)
	if err != nil {
		return err
	}
	if last != nil {
		w.para = last
	}
	return nil
}
