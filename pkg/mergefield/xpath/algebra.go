package xpath

import "fmt"

// Relative expresses path relative to base. Both must be absolute unless base
// is empty, in which case the identity path is returned.
func Relative(path, base string) (string, error) {
	if base == "" || path == base {
		return Identity, nil
	}
	p, err := parseAbsolute(path)
	if err != nil {
		return "", err
	}
	b, err := parseAbsolute(base)
	if err != nil {
		return "", err
	}

	k := commonPrefix(p.Steps, b.Steps)
	rel := Path{Up: len(b.Steps) - k}
	switch {
	case rel.Up == 0:
		// path lies under base
		rel.Steps = append(rel.Steps, p.Steps[k:]...)
	case k < len(p.Steps):
		div := p.Steps[k]
		rel.Steps = append(rel.Steps, Step{
			Tag:    div.Tag,
			Index:  div.Index - b.Steps[k].Index,
			Signed: true,
		})
		rel.Steps = append(rel.Steps, p.Steps[k+1:]...)
	}
	return rel.String(), nil
}

// Absolute resolves rel against base. It is the inverse of Relative.
func Absolute(rel, base string) (string, error) {
	r, err := Parse(rel)
	if err != nil {
		return "", err
	}
	if r.Absolute {
		return r.String(), nil
	}
	b, err := parseAbsolute(base)
	if err != nil {
		return "", err
	}
	if r.Up == 0 {
		out := Path{Absolute: true, Steps: append(append([]Step{}, b.Steps...), r.Steps...)}
		return out.String(), nil
	}
	if r.Up > len(b.Steps) {
		return "", fmt.Errorf("%w: %q walks above the root of %q", ErrMalformedPath, rel, base)
	}
	level := len(b.Steps) - r.Up
	out := Path{Absolute: true, Steps: append([]Step{}, b.Steps[:level]...)}
	if len(r.Steps) == 0 {
		return out.String(), nil
	}
	div := r.Steps[0]
	idx := b.Steps[level].Index + div.Index
	if idx < 1 {
		return "", fmt.Errorf("%w: offset %+d from %s leaves the sibling range", ErrMalformedPath, div.Index, b.Steps[level])
	}
	out.Steps = append(out.Steps, Step{Tag: div.Tag, Index: idx})
	out.Steps = append(out.Steps, r.Steps[1:]...)
	return out.String(), nil
}

func parseAbsolute(s string) (Path, error) {
	p, err := Parse(s)
	if err != nil {
		return Path{}, err
	}
	if !p.Absolute {
		return Path{}, fmt.Errorf("%w: %q is not absolute", ErrMalformedPath, s)
	}
	return p, nil
}

func commonPrefix(a, b []Step) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
