package mergefield

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
)

type address struct {
	City string
	Zip  string
}

type customer struct {
	Name    string
	Address *address
}

func TestContextResolve(t *testing.T) {
	ctx := NewContext(Data{
		"name": "Acme",
		"customer": map[string]interface{}{
			"name":    "Jane",
			"address": map[string]string{"city": "Oslo"},
		},
		"person":  customer{Name: "Kim", Address: &address{City: "Bergen"}},
		"count":   0,
		"enabled": false,
		"tags":    []string{"a", "b"},
	})

	tests := []struct {
		name string
		path string
		want interface{}
	}{
		{"top level", "name", "Acme"},
		{"sigil is ignored", "$name", "Acme"},
		{"nested maps", "customer.address.city", "Oslo"},
		{"struct fields case-insensitively", "person.address.city", "Bergen"},
		{"missing key", "customer.phone", nil},
		{"missing root", "nobody.name", nil},
		{"non-mapping short-circuits", "name.first", "Acme"},
		{"zero values are found", "count", 0},
		{"false is found", "enabled", false},
		{"sequence", "tags", []string{"a", "b"}},
		{"empty path", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.Resolve(tt.path))
		})
	}
}

func TestContextChildFallsBackToParent(t *testing.T) {
	parent := NewContext(Data{"title": "Report", "item": "outer"})
	root := etree.NewElement("w:p")
	child := parent.Child(Data{"item": "inner"}, root)

	assert.Equal(t, "inner", child.Resolve("item"))
	assert.Equal(t, "Report", child.Resolve("title"))
	assert.Equal(t, "outer", parent.Resolve("item"))
	assert.Same(t, parent, child.Parent())
	assert.Same(t, root, child.Root())
	assert.Nil(t, parent.Root())
}

func TestContextSiblingsDoNotShareBindings(t *testing.T) {
	parent := NewContext(nil)
	first := parent.Child(Data{"only": 1}, nil)
	second := parent.Child(Data{}, nil)

	assert.Equal(t, 1, first.Resolve("only"))
	assert.Nil(t, second.Resolve("only"))
}
