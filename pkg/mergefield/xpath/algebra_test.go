package xpath

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelative(t *testing.T) {
	tests := []struct {
		name string
		path string
		base string
		want string
	}{
		{name: "same", path: "/a[1]/b[2]", base: "/a[1]/b[2]", want: "./"},
		{name: "no base", path: "/a[1]/b[2]", base: "", want: "./"},
		{name: "descendant", path: "/a[1]/b[2]/c[1]/d[4]", base: "/a[1]/b[2]", want: "./c[1]/d[4]"},
		{name: "following sibling", path: "/a[1]/b[7]/r[1]", base: "/a[1]/b[5]", want: "../b[+2]/r[1]"},
		{name: "preceding sibling", path: "/a[1]/b[2]", base: "/a[1]/b[5]", want: "../b[-3]"},
		{name: "other tag", path: "/a[1]/p[4]/r[2]", base: "/a[1]/tbl[3]", want: "../p[+1]/r[2]"},
		{name: "deep base", path: "/a[1]/p[9]/r[1]", base: "/a[1]/tbl[3]/tr[1]/tc[1]/p[1]", want: "../../../../p[+6]/r[1]"},
		{name: "ancestor", path: "/a[1]/b[2]", base: "/a[1]/b[2]/c[3]/d[1]", want: "../.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Relative(tt.path, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbsoluteRebase(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		base string
		want string
	}{
		{name: "identity", rel: "./", base: "/a[1]/b[12]", want: "/a[1]/b[12]"},
		{name: "descendant", rel: "./r[3]", base: "/a[1]/b[12]", want: "/a[1]/b[12]/r[3]"},
		{name: "forward", rel: "../b[+2]/r[1]", base: "/a[1]/b[12]", want: "/a[1]/b[14]/r[1]"},
		{name: "backward", rel: "../b[-3]", base: "/a[1]/b[12]", want: "/a[1]/b[9]"},
		{name: "ancestor", rel: "..", base: "/a[1]/b[12]/c[1]", want: "/a[1]/b[12]"},
		{name: "already absolute", rel: "/x[1]/y[2]", base: "/a[1]", want: "/x[1]/y[2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Absolute(tt.rel, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbsoluteErrors(t *testing.T) {
	_, err := Absolute("../../../b[+1]", "/a[1]/b[2]")
	assert.ErrorIs(t, err, ErrMalformedPath)

	_, err = Absolute("../b[-5]", "/a[1]/b[2]")
	assert.ErrorIs(t, err, ErrMalformedPath)

	_, err = Absolute("./b[1]", "b[1]")
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestRoundTripOverDocument(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(sampleXML))

	var paths []string
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		paths = append(paths, Of(e))
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(doc.Root())
	require.Greater(t, len(paths), 10)

	for _, p := range paths {
		for _, b := range paths {
			rel, err := Relative(p, b)
			require.NoError(t, err)
			abs, err := Absolute(rel, b)
			require.NoError(t, err)
			require.Equal(t, p, abs, "relative %q of %q against %q", rel, p, b)
		}
	}
}

const sampleXML = `<w:document xmlns:w="urn:w"><w:body>
<w:p><w:r><w:t>one</w:t></w:r><w:r><w:t>two</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc><w:tc><w:p/></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>three</w:t></w:r></w:p>
<w:p/>
<w:sectPr/>
</w:body></w:document>`
