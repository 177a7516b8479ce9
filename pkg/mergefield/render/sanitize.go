package render

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// AllowedTags lists the markup tags kept by Sanitize.
var AllowedTags = map[string]bool{
	"p": true, "span": true, "br": true, "img": true, "i": true, "b": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
}

// AllowedAttrs lists the attributes kept per tag; "*" applies to every tag.
var AllowedAttrs = map[string][]string{
	"*":   {"class", "style"},
	"img": {"alt", "src"},
}

var voidTags = map[string]bool{"br": true, "img": true}

// Sanitize strips everything outside the allow-lists from markup. Text of
// rejected tags is preserved; comments and doctypes are dropped.
func Sanitize(markup string) string {
	z := nethtml.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			// io.EOF; a strings.Reader never fails otherwise
			return b.String()
		case nethtml.TextToken:
			b.WriteString(html.EscapeString(string(z.Text())))
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			tok := z.Token()
			// keep tokenizing the content of script-like tags as markup
			z.NextIsNotRawText()
			if !AllowedTags[tok.Data] {
				continue
			}
			writeStartTag(&b, tok, tt == nethtml.SelfClosingTagToken)
		case nethtml.EndTagToken:
			tok := z.Token()
			if AllowedTags[tok.Data] && !voidTags[tok.Data] {
				b.WriteString("</" + tok.Data + ">")
			}
		}
	}
}

func writeStartTag(b *strings.Builder, tok nethtml.Token, selfClosing bool) {
	b.WriteString("<" + tok.Data)
	for _, a := range tok.Attr {
		if a.Namespace != "" || !attrAllowed(tok.Data, a.Key) {
			continue
		}
		val := a.Val
		if a.Key == "style" {
			val = CleanStyle(val)
			if val == "" {
				continue
			}
		}
		b.WriteString(" " + a.Key + `="` + html.EscapeString(val) + `"`)
	}
	switch {
	case voidTags[tok.Data] && selfClosing:
		b.WriteString("/>")
	case selfClosing:
		b.WriteString("></" + tok.Data + ">")
	default:
		b.WriteString(">")
	}
}

func attrAllowed(tag, key string) bool {
	for _, scope := range []string{"*", tag} {
		for _, k := range AllowedAttrs[scope] {
			if k == key {
				return true
			}
		}
	}
	return false
}
