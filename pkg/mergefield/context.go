package mergefield

import (
	"reflect"
	"strings"

	"github.com/beevik/etree"
)

// Data represents the data passed to a template for rendering.
type Data map[string]interface{}

// Context is a chained lookup scope. Lookups that fail in a scope fall back
// to its parent.
type Context struct {
	vars   Data
	parent *Context
	root   *etree.Element
}

// NewContext creates a root scope.
func NewContext(vars Data) *Context {
	if vars == nil {
		vars = Data{}
	}
	return &Context{vars: vars}
}

// Child creates a scope whose misses fall back to c. root marks where the
// scope's loop iteration begins and may be nil.
func (c *Context) Child(vars Data, root *etree.Element) *Context {
	child := NewContext(vars)
	child.parent = c
	child.root = root
	return child
}

// Parent returns the enclosing scope, or nil.
func (c *Context) Parent() *Context { return c.parent }

// Root returns the iteration anchor of this scope, or nil.
func (c *Context) Root() *etree.Element { return c.root }

// Resolve looks up a dotted path such as "customer.address.city". Each
// segment descends into a mapping; reaching a non-mapping value returns that
// value as is. A path that resolves to nothing is retried in the parent
// scope, and yields nil when no scope has it.
func (c *Context) Resolve(path string) interface{} {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")
	if path == "" {
		return nil
	}
	for scope := c; scope != nil; scope = scope.parent {
		if v := lookup(scope.vars, strings.Split(path, ".")); v != nil {
			return v
		}
	}
	return nil
}

func lookup(current interface{}, parts []string) interface{} {
	for _, part := range parts {
		next, isMapping := member(current, part)
		if !isMapping {
			return current
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// member returns current[key] and whether current is a mapping at all.
func member(current interface{}, key string) (interface{}, bool) {
	switch m := current.(type) {
	case nil:
		return nil, true
	case Data:
		return m[key], true
	case map[string]interface{}:
		return m[key], true
	case map[string]string:
		if v, ok := m[key]; ok {
			return v, true
		}
		return nil, true
	}

	v := reflect.ValueOf(current)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, true
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, true
		}
		return mv.Interface(), true
	case reflect.Struct:
		f := v.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, key) })
		if !f.IsValid() || !f.CanInterface() {
			return nil, true
		}
		return f.Interface(), true
	}
	return nil, false
}
