package xpath

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(sampleXML))
	return doc
}

func TestOfCountsAllElementSiblings(t *testing.T) {
	doc := loadSample(t)
	body := doc.Root().SelectElement("body")
	children := body.ChildElements()
	require.Len(t, children, 5)

	assert.Equal(t, "/w:document[1]/w:body[1]/w:p[1]", Of(children[0]))
	assert.Equal(t, "/w:document[1]/w:body[1]/w:tbl[2]", Of(children[1]))
	assert.Equal(t, "/w:document[1]/w:body[1]/w:p[3]", Of(children[2]))
	assert.Equal(t, "/w:document[1]/w:body[1]/w:sectPr[5]", Of(children[4]))
}

func TestResolve(t *testing.T) {
	doc := loadSample(t)

	tests := []struct {
		path string
		text string
		miss bool
	}{
		{path: "/w:document[1]/w:body[1]/w:p[1]/w:r[2]/w:t[1]", text: "two"},
		{path: "/w:document[1]/w:body[1]/w:tbl[2]/w:tr[1]/w:tc[1]/w:p[1]/w:r[1]/w:t[1]", text: "cell"},
		{path: "/w:document[1]/w:body[1]/w:p[2]", miss: true},
		{path: "/w:document[1]/w:body[1]/w:p[9]", miss: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, err := Resolve(doc, tt.path)
			require.NoError(t, err)
			if tt.miss {
				assert.Nil(t, e)
				return
			}
			require.NotNil(t, e)
			assert.Equal(t, tt.text, e.Text())
			assert.Equal(t, tt.path, Of(e))
		})
	}

	_, err := Resolve(doc, "w:p[1]")
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestResolveFromFollowsMovedBase(t *testing.T) {
	doc := loadSample(t)
	body := doc.Root().SelectElement("body")
	first := body.ChildElements()[0]

	rel, err := Relative(Of(body.ChildElements()[2])+"/w:r[1]", Of(first))
	require.NoError(t, err)

	// shift everything down by one sibling
	body.InsertChildAt(first.Index(), etree.NewElement("w:p"))

	e, err := ResolveFrom(doc, rel, Of(first))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "three", e.SelectElement("t").Text())
}

func TestAttachedAndWithin(t *testing.T) {
	doc := loadSample(t)
	body := doc.Root().SelectElement("body")
	p := body.ChildElements()[0]
	r := p.ChildElements()[0]

	assert.True(t, Attached(r))
	assert.True(t, Within(r, []*etree.Element{p}))
	assert.False(t, Within(p, []*etree.Element{r}))

	body.RemoveChild(p)
	assert.False(t, Attached(r))
	assert.Equal(t, "", Of(r))
}

func TestSplitAt(t *testing.T) {
	doc := loadSample(t)
	body := doc.Root().SelectElement("body")
	children := body.ChildElements()

	r1 := children[0].ChildElements()[0]
	r2 := children[0].ChildElements()[1]
	a, b, err := SplitAt(r1, r2)
	require.NoError(t, err)
	assert.Same(t, r1, a)
	assert.Same(t, r2, b)

	last := children[2].ChildElements()[0]
	a, b, err = SplitAt(r1, last)
	require.NoError(t, err)
	assert.Same(t, children[0], a)
	assert.Same(t, children[2], b)

	_, _, err = SplitAt(children[0], r1)
	assert.Error(t, err)
}
