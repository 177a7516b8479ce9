package xpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPath is wrapped by every syntax error returned from this package.
var ErrMalformedPath = errors.New("malformed path")

// Identity is the relative path denoting the base location itself.
const Identity = "./"

// Step is one level of a path.
type Step struct {
	Tag   string
	Index int
	// Signed marks a relative sibling offset rather than a position.
	Signed bool
}

func (s Step) String() string {
	if s.Signed {
		return fmt.Sprintf("%s[%+d]", s.Tag, s.Index)
	}
	return fmt.Sprintf("%s[%d]", s.Tag, s.Index)
}

// Path is a parsed absolute or relative path.
type Path struct {
	Absolute bool
	// Up is the number of levels walked upward before Steps apply.
	Up    int
	Steps []Step
}

// String renders p in canonical form.
func (p Path) String() string {
	var b strings.Builder
	switch {
	case p.Absolute:
		for _, s := range p.Steps {
			b.WriteByte('/')
			b.WriteString(s.String())
		}
		return b.String()
	case p.Up == 0:
		b.WriteString("./")
	default:
		for i := 0; i < p.Up; i++ {
			if i > 0 {
				b.WriteByte('/')
			}
			b.WriteString("..")
		}
		if len(p.Steps) > 0 {
			b.WriteByte('/')
		}
	}
	for i, s := range p.Steps {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Parse parses an absolute or relative path.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	var p Path
	rest := s
	switch {
	case strings.HasPrefix(s, "/"):
		p.Absolute = true
		rest = s[1:]
		if rest == "" {
			return Path{}, fmt.Errorf("%w: %q has no steps", ErrMalformedPath, s)
		}
	case s == "." || s == Identity:
		return p, nil
	case strings.HasPrefix(s, "./"):
		rest = s[2:]
	case s == ".." || strings.HasPrefix(s, "../"):
		for rest == ".." || strings.HasPrefix(rest, "../") {
			p.Up++
			if rest == ".." {
				rest = ""
				break
			}
			rest = rest[3:]
		}
	}
	if rest == "" {
		return p, nil
	}
	for i, part := range strings.Split(rest, "/") {
		step, err := parseStep(part)
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q: %v", ErrMalformedPath, s, err)
		}
		wantSigned := p.Up > 0 && i == 0
		if step.Signed != wantSigned {
			if wantSigned {
				return Path{}, fmt.Errorf("%w: %q: step %q needs a signed sibling offset", ErrMalformedPath, s, part)
			}
			return Path{}, fmt.Errorf("%w: %q: unexpected signed index in %q", ErrMalformedPath, s, part)
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func parseStep(part string) (Step, error) {
	open := strings.IndexByte(part, '[')
	if open <= 0 || !strings.HasSuffix(part, "]") {
		return Step{}, fmt.Errorf("step %q is not of the form tag[n]", part)
	}
	tag, num := part[:open], part[open+1:len(part)-1]
	if strings.ContainsAny(tag, "[]. ") {
		return Step{}, fmt.Errorf("invalid tag %q", tag)
	}
	signed := strings.HasPrefix(num, "+") || strings.HasPrefix(num, "-")
	n, err := strconv.Atoi(num)
	if err != nil {
		return Step{}, fmt.Errorf("invalid index %q", num)
	}
	if !signed && n < 1 {
		return Step{}, fmt.Errorf("index %d out of range", n)
	}
	return Step{Tag: tag, Index: n, Signed: signed}, nil
}
