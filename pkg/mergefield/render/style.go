package render

import "strings"

// AllowedStyles lists the CSS properties kept by CleanStyle.
var AllowedStyles = map[string]bool{
	"color":        true,
	"font-weight":  true,
	"font-style":   true,
	"font-variant": true,
}

// Declaration is one "name: value" pair of an inline style.
type Declaration struct {
	Name  string
	Value string
}

// ParseStyle splits an inline style attribute into declarations, in order.
// Entries without a colon are ignored; names are lower-cased.
func ParseStyle(style string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, Declaration{Name: name, Value: strings.TrimSpace(value)})
	}
	return out
}

// CleanStyle keeps only allowed declarations, joined as "name: value; ...".
func CleanStyle(style string) string {
	var kept []string
	for _, d := range ParseStyle(style) {
		if AllowedStyles[d.Name] {
			kept = append(kept, d.Name+": "+d.Value)
		}
	}
	return strings.Join(kept, "; ")
}

// StyleMap returns the declarations of style as a map; later entries win.
func StyleMap(style string) map[string]string {
	m := make(map[string]string)
	for _, d := range ParseStyle(style) {
		m[d.Name] = d.Value
	}
	return m
}
